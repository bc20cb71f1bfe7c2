package syncer

import (
	"context"
	"fmt"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/remote"
)

// recordConflict files a divergence for operator review. A newer
// conflict of the same type supersedes the pending one: resolving
// against stale data would lose the later divergence anyway.
func (c *Coordinator) recordConflict(local, server game.Snapshot) {
	record := ConflictRecord{
		ID:         "conflict-" + uuid.NewString(),
		Type:       conflictType(local, server),
		LocalData:  local,
		ServerData: server,
		Timestamp:  c.now(),
	}

	c.mu.Lock()
	kept := c.conflicts[:0]
	superseded := 0
	for _, existing := range c.conflicts {
		if existing.Type == record.Type {
			superseded++
			continue
		}
		kept = append(kept, existing)
	}
	c.conflicts = append(kept, record)
	c.mu.Unlock()

	c.metrics.IncConflictsDetected()
	log.Warn("Sync conflict detected",
		"id", record.ID,
		"type", record.Type,
		"local_version", local.Version,
		"server_version", server.Version,
		"server_device", server.DeviceID,
		"superseded", superseded)
	if err := c.notify.SendConflictDetected(record.ID, local.Version, server.Version, server.DeviceID, false); err != nil {
		log.Warn("Failed to send conflict notification", "error", err)
	}
}

// Resolve settles a pending conflict. Choosing the server side adopts
// its snapshot locally with a bumped version; choosing local keeps the
// current state. Either way the chosen state is pushed so both sides
// converge.
func (c *Coordinator) Resolve(ctx context.Context, conflictID string, choice Choice) error {
	if choice != ChoiceLocal && choice != ChoiceServer {
		return fmt.Errorf("unknown resolution choice %q", choice)
	}

	c.mu.Lock()
	idx := -1
	for i, record := range c.conflicts {
		if record.ID == conflictID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return ErrConflictNotFound
	}
	record := c.conflicts[idx]
	c.conflicts = append(c.conflicts[:idx], c.conflicts[idx+1:]...)
	c.mu.Unlock()

	if choice == ChoiceServer {
		adopted := c.store.Adopt(record.ServerData)
		log.Info("Conflict resolved with server state", "id", conflictID, "version", adopted.Version)
	} else {
		log.Info("Conflict resolved keeping local state", "id", conflictID)
	}

	c.metrics.IncConflictsResolved()
	if err := c.notify.SendConflictResolved(conflictID, string(choice), false); err != nil {
		log.Warn("Failed to send resolution notification", "error", err)
	}

	if current := c.store.Current(); current != nil && c.signal.IsOnline() {
		if err := c.push(ctx, remote.TodayKey(c.now()), *current); err != nil {
			return fmt.Errorf("publishing resolved state: %w", err)
		}
	}
	return nil
}

// conflictType names the first divergent snapshot section, courts
// first since they are what the operator is looking at.
func conflictType(local, server game.Snapshot) ConflictType {
	switch {
	case !reflect.DeepEqual(local.Courts, server.Courts):
		return ConflictCourt
	case !reflect.DeepEqual(local.Teams, server.Teams):
		return ConflictTeam
	default:
		return ConflictPlayer
	}
}
