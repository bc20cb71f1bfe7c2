package localstore

import "github.com/nmdr-club/courtsync/internal/game"

// Store is the durable, synchronous persistence layer for the current
// game-state snapshot. A page reload or crash never loses more than the
// last unflushed in-memory mutation.
type Store interface {
	// Save builds a new snapshot with a bumped version and persists it.
	// Persistence failures are logged and swallowed; the returned
	// snapshot is authoritative for the session either way. While
	// offline, Save also enqueues the snapshot for later replay.
	Save(courts []game.Court, teams []game.Team, players []game.Player) game.Snapshot

	// Load returns the last persisted snapshot, or nil when none exists
	// or the stored one fell outside the freshness window. Stale
	// records are purged on the spot.
	Load() (*game.Snapshot, error)

	// Adopt replaces local state with a server snapshot, keeping the
	// local version counter strictly increasing.
	Adopt(server game.Snapshot) game.Snapshot

	// Current returns the in-memory snapshot for this session, or nil
	// before the first Save/Load.
	Current() *game.Snapshot

	Clear() error
	DeviceID() string
}

// Enqueuer records a mutation for later replay against the remote
// store. Implemented by the offline action queue.
type Enqueuer interface {
	Enqueue(actionType string, data []byte) error
}
