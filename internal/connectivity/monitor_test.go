package connectivity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nmdr-club/courtsync/internal/connectivity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionsAreEdgeTriggered(t *testing.T) {
	m := connectivity.NewMonitor(func(ctx context.Context) error { return nil }, time.Second)

	var transitions []bool
	unsubscribe := m.OnChange(func(online bool) {
		transitions = append(transitions, online)
	})
	defer unsubscribe()

	require.True(t, m.IsOnline(), "monitor starts online")

	m.SetOnline(true) // no flip, no callback
	m.SetOnline(false)
	m.SetOnline(false) // still offline, no callback
	m.SetOnline(true)

	assert.Equal(t, []bool{false, true}, transitions)
}

func TestUnsubscribeStopsCallbacks(t *testing.T) {
	m := connectivity.NewMonitor(func(ctx context.Context) error { return nil }, time.Second)

	var calls int
	unsubscribe := m.OnChange(func(online bool) { calls++ })

	m.SetOnline(false)
	unsubscribe()
	m.SetOnline(true)

	assert.Equal(t, 1, calls)
}

func TestCheckFollowsProbe(t *testing.T) {
	var probeErr error
	m := connectivity.NewMonitor(func(ctx context.Context) error { return probeErr }, time.Second)

	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.IsOnline())

	probeErr = errors.New("unreachable")
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.IsOnline())

	probeErr = nil
	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.IsOnline())
}
