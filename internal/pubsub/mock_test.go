package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestMockPublishDeliversToListeners(t *testing.T) {
	m := NewMock("test-project")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Listen(ctx, "test-sub", func(data []byte) {
			var event ChangeEvent
			if err := msgpack.Unmarshal(data, &event); err == nil {
				received <- event
			}
		})
	}()

	// Wait for the listener to register before publishing.
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.handlers) == 1
	}, time.Second, 5*time.Millisecond)

	err := m.Publish(ChangeEvent{Date: "2026-08-31", DeviceID: "device-a", Version: 3})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "device-a", event.DeviceID)
		assert.Equal(t, int64(3), event.Version)
		assert.Equal(t, "2026-08-31", event.Date)
	case <-time.After(time.Second):
		t.Fatal("listener never received the published event")
	}

	cancel()
	wg.Wait()
}

func TestMockPublishWithNoListeners(t *testing.T) {
	m := NewMock("test-project")

	err := m.Publish(ChangeEvent{Date: "2026-08-31", DeviceID: "device-a", Version: 1})
	assert.NoError(t, err)
}
