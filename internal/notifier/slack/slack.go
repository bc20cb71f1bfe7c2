package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nmdr-club/courtsync/internal/metrics"
	"github.com/nmdr-club/courtsync/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending operator notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendDroppedActionsWarning(count int, actionTypes []string, dryRun bool) error {
	msg := s.formatDroppedActionsWarning(count, actionTypes)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendConflictDetected(conflictID string, localVersion, serverVersion int64, serverDevice string, dryRun bool) error {
	msg := s.formatConflictDetected(conflictID, localVersion, serverVersion, serverDevice)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendConflictResolved(conflictID, choice string, dryRun bool) error {
	msg := s.formatConflictResolved(conflictID, choice)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// formatDroppedActionsWarning creates the ops-channel warning for
// permanently dropped offline actions using Block Kit.
func (s *Notifier) formatDroppedActionsWarning(count int, actionTypes []string) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", ":warning: Offline changes dropped", false, false)
	header := slack.NewHeaderBlock(headerText)

	body := fmt.Sprintf(
		"*%d* queued change(s) exceeded the retry limit and were discarded.\nTypes: `%s`\nThe court board may be missing these changes on other devices.",
		count, strings.Join(actionTypes, "`, `"),
	)
	section := slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", body, false, false), nil, nil)

	return slack.NewBlockMessage(header, section)
}

// formatConflictDetected creates the ops-channel notice for a pending conflict.
func (s *Notifier) formatConflictDetected(conflictID string, localVersion, serverVersion int64, serverDevice string) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", ":crossed_swords: Game-state conflict", false, false)
	header := slack.NewHeaderBlock(headerText)

	body := fmt.Sprintf(
		"Local version *v%d* diverged from server version *v%d* (written by `%s`).\nConflict `%s` is waiting for a manual decision on the court board.",
		localVersion, serverVersion, serverDevice, conflictID,
	)
	section := slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", body, false, false), nil, nil)

	return slack.NewBlockMessage(header, section)
}

func (s *Notifier) formatConflictResolved(conflictID, choice string) slack.Message {
	body := fmt.Sprintf(":white_check_mark: Conflict `%s` resolved, keeping the *%s* version.", conflictID, choice)
	section := slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", body, false, false), nil, nil)
	return slack.NewBlockMessage(section)
}
