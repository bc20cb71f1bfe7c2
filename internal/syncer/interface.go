package syncer

import (
	"context"

	"github.com/nmdr-club/courtsync/internal/game"
)

// Syncer coordinates the local store, the offline queue and the remote
// backend. It is the only component allowed to run a sync cycle.
type Syncer interface {
	// Start launches the periodic sync loop and the connectivity and
	// change-event listeners. It returns immediately.
	Start(ctx context.Context)
	// Stop tears down the loop and listeners and flushes any pending
	// debounced save. Safe to call more than once.
	Stop()
	// Save schedules a debounced snapshot persist. Rapid calls within
	// the debounce window collapse into one write carrying the last
	// state seen.
	Save(courts []game.Court, teams []game.Team, players []game.Player)
	// Flush persists a pending debounced save immediately, if any.
	Flush()
	// SyncNow runs a single sync cycle. It returns ErrOffline when the
	// device has no connectivity and ErrSyncInProgress when another
	// cycle is already running.
	SyncNow(ctx context.Context) error
	// Resolve settles a pending conflict with the operator's choice.
	Resolve(ctx context.Context, conflictID string, choice Choice) error
	// Status reports the current sync state for the UI.
	Status() Status
}
