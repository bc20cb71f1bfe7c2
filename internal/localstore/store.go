package localstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/kv"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	snapshotKey = "game_state"
	deviceIDKey = "device_id"

	// ActionUpdateGameState is the mutation tag replayed by the sync
	// coordinator: the payload is a full msgpack snapshot.
	ActionUpdateGameState = "UPDATE_GAME_STATE"
)

// DefaultSnapshotTTL is the freshness window for persisted snapshots. A
// court layout from a previous session is more confusing mid-game than
// no state at all.
const DefaultSnapshotTTL = 2 * time.Hour

type store struct {
	kv     kv.Store
	queue  Enqueuer
	online func() bool
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	current  *game.Snapshot
	deviceID string
}

// New creates the Local State Store. online reports the current
// connectivity signal; queue receives a copy of every snapshot saved
// while offline.
func New(kvStore kv.Store, queue Enqueuer, online func() bool, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	s := &store{
		kv:     kvStore,
		queue:  queue,
		online: online,
		ttl:    ttl,
		now:    time.Now,
	}
	s.deviceID = s.loadOrCreateDeviceID()
	return s
}

// NewWithClock is New with an injected clock. Used in tests.
func NewWithClock(kvStore kv.Store, queue Enqueuer, online func() bool, ttl time.Duration, now func() time.Time) Store {
	s := New(kvStore, queue, online, ttl).(*store)
	s.now = now
	return s
}

func (s *store) Save(courts []game.Court, teams []game.Team, players []game.Player) game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var version int64
	if s.current != nil {
		version = s.current.Version
	}
	snap := game.Snapshot{
		Courts:           courts,
		Teams:            teams,
		AvailablePlayers: players,
		Version:          version + 1,
		DeviceID:         s.deviceID,
		LastUpdated:      s.now(),
	}
	s.current = &snap

	payload, err := msgpack.Marshal(&snap)
	if err != nil {
		log.Error("Failed to encode snapshot, keeping in-memory state only", "error", err)
		return snap
	}
	if err := s.kv.Set(snapshotKey, payload); err != nil {
		// Storage errors never block the session; memory stays authoritative.
		log.Error("Failed to persist snapshot", "error", err, "version", snap.Version)
	}

	if s.online == nil || !s.online() {
		if err := s.queue.Enqueue(ActionUpdateGameState, payload); err != nil {
			log.Error("Failed to queue offline snapshot", "error", err, "version", snap.Version)
		} else {
			log.Debug("Snapshot queued for replay", "version", snap.Version)
		}
	}
	return snap
}

func (s *store) Load() (*game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok, err := s.kv.Get(snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var snap game.Snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		// A corrupt record is as useless as a stale one.
		log.Warn("Discarding unreadable snapshot", "error", err)
		s.kv.Delete(snapshotKey)
		return nil, nil
	}

	if s.now().Sub(snap.LastUpdated) >= s.ttl {
		log.Info("Discarding stale snapshot", "last_updated", snap.LastUpdated, "ttl", s.ttl)
		s.kv.Delete(snapshotKey)
		return nil, nil
	}

	s.current = &snap
	return &snap, nil
}

func (s *store) Adopt(server game.Snapshot) game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := server.Version
	if s.current != nil && s.current.Version > version {
		version = s.current.Version
	}
	snap := server
	snap.Version = version + 1
	snap.DeviceID = s.deviceID
	snap.LastUpdated = s.now()
	s.current = &snap

	payload, err := msgpack.Marshal(&snap)
	if err != nil {
		log.Error("Failed to encode adopted snapshot", "error", err)
		return snap
	}
	if err := s.kv.Set(snapshotKey, payload); err != nil {
		log.Error("Failed to persist adopted snapshot", "error", err, "version", snap.Version)
	}
	return snap
}

func (s *store) Current() *game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.kv.Delete(snapshotKey); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

func (s *store) DeviceID() string {
	return s.deviceID
}

// loadOrCreateDeviceID returns the stable per-device identifier,
// generating and persisting one on first use.
func (s *store) loadOrCreateDeviceID() string {
	value, ok, err := s.kv.Get(deviceIDKey)
	if err == nil && ok && len(value) > 0 {
		return string(value)
	}
	if err != nil {
		log.Error("Failed to read device id", "error", err)
	}

	deviceID := "device-" + uuid.New().String()
	if err := s.kv.Set(deviceIDKey, []byte(deviceID)); err != nil {
		log.Error("Failed to persist device id", "error", err, "deviceID", deviceID)
	}
	log.Info("Generated device id", "deviceID", deviceID)
	return deviceID
}
