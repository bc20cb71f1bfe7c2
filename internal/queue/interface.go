package queue

import "context"

// ApplyFunc applies a single queued action against the remote store.
type ApplyFunc func(ctx context.Context, action OfflineAction) error

// Queue is the ordered log of pending mutations recorded while
// disconnected. Replay is FIFO: insertion order is the causal order of
// local mutations. The queue is durable across restarts.
type Queue interface {
	Enqueue(actionType string, data []byte) error

	// Drain replays the queue in FIFO order. Applied actions are
	// removed; failed ones have their retry count bumped and are
	// dropped once it passes the ceiling. A partial drain is an
	// accepted terminal state.
	Drain(ctx context.Context, apply ApplyFunc) DrainResult

	Len() int
	Clear() error
}
