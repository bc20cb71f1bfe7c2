package syncer

import (
	"time"

	"github.com/nmdr-club/courtsync/internal/game"
)

// Choice is the operator's side in a conflict resolution.
type Choice string

const (
	ChoiceLocal  Choice = "local"
	ChoiceServer Choice = "server"
)

// ConflictType names the first divergent section of the snapshot, for
// display. Detection itself is whole-snapshot.
type ConflictType string

const (
	ConflictCourt  ConflictType = "court"
	ConflictTeam   ConflictType = "team"
	ConflictPlayer ConflictType = "player"
)

// ConflictRecord captures a local/server divergence at the point it was
// detected. It lives until an operator resolves it or a later sync
// supersedes it.
type ConflictRecord struct {
	ID         string        `json:"id"`
	Type       ConflictType  `json:"type"`
	LocalData  game.Snapshot `json:"local_data"`
	ServerData game.Snapshot `json:"server_data"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Status is the sole read model the UI consumes. It is recomputed after
// every transition and never stale by more than one cycle.
type Status struct {
	IsOnline       bool             `json:"is_online"`
	IsSyncing      bool             `json:"is_syncing"`
	LastSyncTime   *time.Time       `json:"last_sync_time,omitempty"`
	PendingChanges int              `json:"pending_changes"`
	Conflicts      []ConflictRecord `json:"conflicts"`
}

// DefaultSyncInterval is the periodic reconciliation cadence.
const DefaultSyncInterval = 15 * time.Second

// DefaultDebounceWindow coalesces rapid-fire local mutations into a
// single persisted snapshot.
const DefaultDebounceWindow = 500 * time.Millisecond
