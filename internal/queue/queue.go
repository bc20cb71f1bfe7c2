package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nmdr-club/courtsync/internal/kv"
	"github.com/vmihailenco/msgpack/v5"
)

const storageKey = "offline_actions"

// DefaultMaxRetries is the fixed retry ceiling. Past it an action is
// dropped with a warning, trading durability for a bounded queue.
const DefaultMaxRetries = 3

type actionQueue struct {
	kv         kv.Store
	maxRetries int
	now        func() time.Time

	mu      sync.Mutex
	actions []OfflineAction
}

// New creates the offline action queue, restoring any actions persisted
// by a previous session.
func New(kvStore kv.Store, maxRetries int) Queue {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	q := &actionQueue{
		kv:         kvStore,
		maxRetries: maxRetries,
		now:        time.Now,
	}
	q.restore()
	return q
}

func (q *actionQueue) restore() {
	payload, ok, err := q.kv.Get(storageKey)
	if err != nil {
		log.Error("Failed to read persisted action queue", "error", err)
		return
	}
	if !ok {
		return
	}
	if err := msgpack.Unmarshal(payload, &q.actions); err != nil {
		log.Warn("Discarding unreadable action queue", "error", err)
		q.kv.Delete(storageKey)
		q.actions = nil
		return
	}
	if len(q.actions) > 0 {
		log.Info("Restored offline action queue", "pending", len(q.actions))
	}
}

func (q *actionQueue) Enqueue(actionType string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	action := OfflineAction{
		ID:        "action-" + uuid.New().String(),
		Type:      actionType,
		Data:      data,
		Timestamp: q.now(),
	}
	q.actions = append(q.actions, action)
	log.Debug("Action enqueued", "actionID", action.ID, "type", actionType, "pending", len(q.actions))
	return q.persistLocked()
}

func (q *actionQueue) Drain(ctx context.Context, apply ApplyFunc) DrainResult {
	q.mu.Lock()
	pending := make([]OfflineAction, len(q.actions))
	copy(pending, q.actions)
	q.mu.Unlock()

	var result DrainResult
	kept := make([]OfflineAction, 0, len(pending))
	for _, action := range pending {
		if err := apply(ctx, action); err != nil {
			action.RetryCount++
			if action.RetryCount > q.maxRetries {
				log.Warn("Dropping action after retry ceiling", "actionID", action.ID, "type", action.Type, "retries", action.RetryCount)
				result.Dropped = append(result.Dropped, action)
				continue
			}
			log.Error("Failed to apply queued action", "error", err, "actionID", action.ID, "retry", action.RetryCount)
			kept = append(kept, action)
			continue
		}
		result.Applied++
	}

	q.mu.Lock()
	// Mutations that arrived mid-drain are newer than the drained
	// prefix; keep them behind the survivors.
	if len(q.actions) > len(pending) {
		kept = append(kept, q.actions[len(pending):]...)
	}
	q.actions = kept
	if err := q.persistLocked(); err != nil {
		log.Error("Failed to persist queue after drain", "error", err)
	}
	result.Remaining = len(q.actions)
	q.mu.Unlock()
	return result
}

func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

func (q *actionQueue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.actions = nil
	if err := q.kv.Delete(storageKey); err != nil {
		return fmt.Errorf("failed to clear action queue: %w", err)
	}
	return nil
}

func (q *actionQueue) persistLocked() error {
	payload, err := msgpack.Marshal(q.actions)
	if err != nil {
		return fmt.Errorf("failed to encode action queue: %w", err)
	}
	if err := q.kv.Set(storageKey, payload); err != nil {
		return fmt.Errorf("failed to persist action queue: %w", err)
	}
	return nil
}
