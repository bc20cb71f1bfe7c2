package queue

import "time"

// OfflineAction is one queued mutation awaiting confirmed remote
// application.
type OfflineAction struct {
	ID         string    `json:"id" msgpack:"id"`
	Type       string    `json:"type" msgpack:"type"`
	Data       []byte    `json:"data" msgpack:"data"`
	Timestamp  time.Time `json:"timestamp" msgpack:"timestamp"`
	RetryCount int       `json:"retry_count" msgpack:"retry_count"`
}

// DrainResult summarizes one replay pass over the queue.
type DrainResult struct {
	Applied int
	// Dropped holds actions that exceeded the retry ceiling and were
	// removed. This is the deliberate bounded-retry data-loss boundary.
	Dropped   []OfflineAction
	Remaining int
}
