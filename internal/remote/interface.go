package remote

import (
	"context"

	"github.com/nmdr-club/courtsync/internal/game"
)

// Client is the remote persistence collaborator: the club's snapshot
// service, keyed by day. The remote store is the only multi-writer
// resource in the system; other devices write to it too.
type Client interface {
	// PutSnapshot stores the snapshot under the given YYYY-MM-DD date.
	PutSnapshot(ctx context.Context, date string, snapshot game.Snapshot) error

	// GetSnapshot returns the stored snapshot for the date, or nil when
	// the remote has no record.
	GetSnapshot(ctx context.Context, date string) (*game.Snapshot, error)

	// Ping probes reachability. Used by the connectivity monitor.
	Ping(ctx context.Context) error
}
