package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nmdr-club/courtsync/internal/connectivity"
	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/localstore"
	"github.com/nmdr-club/courtsync/internal/metrics"
	"github.com/nmdr-club/courtsync/internal/notifier"
	"github.com/nmdr-club/courtsync/internal/pubsub"
	"github.com/nmdr-club/courtsync/internal/queue"
	"github.com/nmdr-club/courtsync/internal/remote"
)

var (
	// ErrSyncInProgress means a cycle is already running; at most one
	// runs at a time.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrOffline means a cycle was requested without connectivity.
	ErrOffline = errors.New("device is offline")
	// ErrConflictNotFound means the conflict was already resolved or
	// superseded.
	ErrConflictNotFound = errors.New("conflict not found")
)

type pendingState struct {
	courts  []game.Court
	teams   []game.Team
	players []game.Player
}

// Coordinator is the sync engine. It owns the cycle state machine, the
// pending-conflict list and the debounced local persist. All network
// traffic for game state flows through it.
type Coordinator struct {
	store  localstore.Store
	queue  queue.Queue
	remote remote.Client
	signal connectivity.Signal
	events pubsub.PubSubClient
	notify notifier.Notifier

	metrics        metrics.Metrics
	interval       time.Duration
	debounce       time.Duration
	subscriptionID string
	now            func() time.Time

	mu        sync.Mutex
	syncing   bool
	lastSync  *time.Time
	conflicts []ConflictRecord
	stop      chan struct{}
	unsub     func()

	saveMu      sync.Mutex
	pendingSave *pendingState
	saveTimer   *time.Timer
}

// NewCoordinator wires the sync engine over its collaborators. events
// may be nil when no push channel is configured; the engine then relies
// on the periodic cycle alone. interval and debounce fall back to the
// defaults when non-positive.
func NewCoordinator(
	store localstore.Store,
	actionQueue queue.Queue,
	remoteClient remote.Client,
	signal connectivity.Signal,
	events pubsub.PubSubClient,
	notify notifier.Notifier,
	m metrics.Metrics,
	subscriptionID string,
	interval, debounce time.Duration,
) *Coordinator {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	if debounce <= 0 {
		debounce = DefaultDebounceWindow
	}
	return &Coordinator{
		store:          store,
		queue:          actionQueue,
		remote:         remoteClient,
		signal:         signal,
		events:         events,
		notify:         notify,
		metrics:        m,
		interval:       interval,
		debounce:       debounce,
		subscriptionID: subscriptionID,
		now:            time.Now,
	}
}

var _ Syncer = (*Coordinator)(nil)

// SetClock overrides the time source for tests.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// Start launches the periodic cycle, the reconnect trigger and, when a
// push channel is configured, the change-event listener.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	c.unsub = c.signal.OnChange(func(online bool) {
		if online {
			log.Info("Back online, syncing immediately")
			go c.backgroundSync(ctx)
		}
	})
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				c.backgroundSync(ctx)
			}
		}
	}()

	if c.events != nil && c.subscriptionID != "" {
		go func() {
			if err := c.events.Listen(ctx, c.subscriptionID, c.handleChangeEvent(ctx)); err != nil {
				log.Error("Change-event listener stopped", "error", err)
			}
		}()
	}
}

// Stop flushes any pending debounced save and tears down the loops.
func (c *Coordinator) Stop() {
	c.Flush()

	c.mu.Lock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Save schedules a debounced persist of the given state. Each call
// re-arms the window with the latest state; only the trailing edge
// writes.
func (c *Coordinator) Save(courts []game.Court, teams []game.Team, players []game.Player) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.pendingSave = &pendingState{courts: courts, teams: teams, players: players}
	if c.saveTimer != nil {
		c.saveTimer.Stop()
	}
	c.saveTimer = time.AfterFunc(c.debounce, c.Flush)
}

// Flush persists a pending debounced save now. A no-op when nothing is
// pending.
func (c *Coordinator) Flush() {
	c.saveMu.Lock()
	pending := c.pendingSave
	c.pendingSave = nil
	if c.saveTimer != nil {
		c.saveTimer.Stop()
		c.saveTimer = nil
	}
	c.saveMu.Unlock()

	if pending == nil {
		return
	}
	snap := c.store.Save(pending.courts, pending.teams, pending.players)
	log.Debug("Persisted local snapshot", "version", snap.Version)

	if c.signal.IsOnline() {
		go c.backgroundSync(context.Background())
	}
}

// SyncNow runs a single cycle: replay the offline queue, fetch the
// server snapshot, then converge or record a conflict. Cycles are
// mutually exclusive; a second caller gets ErrSyncInProgress instead of
// a stacked run.
func (c *Coordinator) SyncNow(ctx context.Context) error {
	if !c.signal.IsOnline() {
		return ErrOffline
	}

	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		return ErrSyncInProgress
	}
	c.syncing = true
	c.mu.Unlock()

	c.metrics.IncSyncRuns()
	start := c.now()
	err := c.cycle(ctx)
	c.metrics.ObserveSyncDuration(c.now().Sub(start).Seconds())

	c.mu.Lock()
	c.syncing = false
	if err == nil {
		t := c.now()
		c.lastSync = &t
	}
	c.mu.Unlock()

	if err != nil {
		c.metrics.IncSyncFailures()
		log.Error("Sync cycle failed", "error", err)
	}
	return err
}

func (c *Coordinator) cycle(ctx context.Context) error {
	result := c.queue.Drain(ctx, c.applyAction)
	if result.Applied > 0 {
		c.metrics.AddActionsReplayed(result.Applied)
		log.Info("Replayed offline actions", "count", result.Applied)
	}
	if len(result.Dropped) > 0 {
		c.reportDropped(result.Dropped)
	}
	c.metrics.SetPendingActions(result.Remaining)

	date := remote.TodayKey(c.now())
	server, err := c.remote.GetSnapshot(ctx, date)
	if err != nil {
		return fmt.Errorf("fetching server snapshot: %w", err)
	}

	local := c.store.Current()
	switch {
	case local == nil && server == nil:
		return nil
	case local == nil:
		adopted := c.store.Adopt(*server)
		log.Info("Adopted server snapshot", "server_version", server.Version, "version", adopted.Version)
		return nil
	case server == nil:
		return c.push(ctx, date, *local)
	case server.Version == local.Version && server.DeviceID == local.DeviceID:
		// In agreement, nothing to do.
		return nil
	case server.DeviceID == local.DeviceID:
		// Our own write echoed back at a different version.
		if local.Version > server.Version {
			return c.push(ctx, date, *local)
		}
		c.store.Adopt(*server)
		return nil
	default:
		c.recordConflict(*local, *server)
		return nil
	}
}

// applyAction replays one queued mutation against the remote store.
func (c *Coordinator) applyAction(ctx context.Context, action queue.OfflineAction) error {
	switch action.Type {
	case localstore.ActionUpdateGameState:
		var snap game.Snapshot
		if err := msgpack.Unmarshal(action.Data, &snap); err != nil {
			return fmt.Errorf("decoding queued snapshot: %w", err)
		}
		// Actions apply to the day they were recorded, not the day the
		// device came back online.
		return c.remote.PutSnapshot(ctx, remote.TodayKey(action.Timestamp), snap)
	default:
		log.Warn("Skipping offline action of unknown type", "type", action.Type, "id", action.ID)
		return nil
	}
}

func (c *Coordinator) push(ctx context.Context, date string, snap game.Snapshot) error {
	if err := c.remote.PutSnapshot(ctx, date, snap); err != nil {
		return fmt.Errorf("pushing snapshot: %w", err)
	}
	log.Info("Pushed local snapshot", "date", date, "version", snap.Version)
	c.publishChange(date, snap)
	return nil
}

func (c *Coordinator) publishChange(date string, snap game.Snapshot) {
	if c.events == nil {
		return
	}
	evt := pubsub.ChangeEvent{Date: date, DeviceID: snap.DeviceID, Version: snap.Version}
	if err := c.events.SendMessage(pubsub.EventGameStateChanged, evt); err != nil {
		log.Warn("Failed to publish change event", "error", err)
	}
}

func (c *Coordinator) handleChangeEvent(ctx context.Context) func(data []byte) {
	return func(data []byte) {
		var evt pubsub.ChangeEvent
		if err := c.events.ProcessMessage(data, &evt); err != nil {
			log.Warn("Discarding malformed change event", "error", err)
			return
		}
		if evt.DeviceID == c.store.DeviceID() {
			// Our own publish echoed back.
			return
		}
		log.Info("Peer updated game state", "device", evt.DeviceID, "version", evt.Version)
		c.backgroundSync(ctx)
	}
}

// reportDropped surfaces bounded-retry data loss to the ops channel and
// metrics. The end user is deliberately not interrupted.
func (c *Coordinator) reportDropped(dropped []queue.OfflineAction) {
	c.metrics.AddActionsDropped(len(dropped))

	seen := make(map[string]bool)
	types := make([]string, 0, len(dropped))
	for _, action := range dropped {
		if !seen[action.Type] {
			seen[action.Type] = true
			types = append(types, action.Type)
		}
	}
	log.Error("Dropped offline actions past the retry ceiling", "count", len(dropped), "types", types)
	if err := c.notify.SendDroppedActionsWarning(len(dropped), types, false); err != nil {
		log.Warn("Failed to send dropped-actions warning", "error", err)
	}
}

func (c *Coordinator) backgroundSync(ctx context.Context) {
	err := c.SyncNow(ctx)
	if err != nil && !errors.Is(err, ErrSyncInProgress) && !errors.Is(err, ErrOffline) {
		log.Warn("Background sync failed", "error", err)
	}
}

// Status reports the current engine state for the UI.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	conflicts := make([]ConflictRecord, len(c.conflicts))
	copy(conflicts, c.conflicts)
	var last *time.Time
	if c.lastSync != nil {
		t := *c.lastSync
		last = &t
	}
	return Status{
		IsOnline:       c.signal.IsOnline(),
		IsSyncing:      c.syncing,
		LastSyncTime:   last,
		PendingChanges: c.queue.Len(),
		Conflicts:      conflicts,
	}
}
