package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/nmdr-club/courtsync/internal/metrics"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metr := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	n := NewNotifierWithAPI(nil, "C123", metr)

	err := n.SendDroppedActionsWarning(2, []string{"UPDATE_GAME_STATE"}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metr.NotifSent)
}

func TestSendDroppedActionsWarning(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metr := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metr)

	err := n.SendDroppedActionsWarning(3, []string{"UPDATE_GAME_STATE"}, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metr.NotifSent)
	assert.Equal(t, 0, metr.NotifFailed)
}

func TestSendConflictDetected_Failure(t *testing.T) {
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", errors.New("slack is down")
		},
	}

	metr := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metr)

	err := n.SendConflictDetected("conflict-1", 5, 7, "device-other", false)
	require.Error(t, err)
	assert.Equal(t, 0, metr.NotifSent)
	assert.Equal(t, 1, metr.NotifFailed)
}

func TestSendConflictResolved(t *testing.T) {
	metr := metrics.NewMock()
	api := &mockSlackAPI{}
	n := NewNotifierWithAPI(api, "C123", metr)

	err := n.SendConflictResolved("conflict-1", "server", false)
	require.NoError(t, err)
	assert.Equal(t, 1, metr.NotifSent)
}
