package syncer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nmdr-club/courtsync/internal/connectivity"
	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/kv"
	"github.com/nmdr-club/courtsync/internal/localstore"
	"github.com/nmdr-club/courtsync/internal/metrics"
	"github.com/nmdr-club/courtsync/internal/notifier"
	"github.com/nmdr-club/courtsync/internal/pubsub"
	"github.com/nmdr-club/courtsync/internal/queue"
	"github.com/nmdr-club/courtsync/internal/remote"
	"github.com/nmdr-club/courtsync/internal/syncer"
)

type harness struct {
	kv      *kv.Mock
	queue   queue.Queue
	store   localstore.Store
	remote  *remote.MockClient
	signal  *connectivity.Monitor
	events  *pubsub.MockPubSubClient
	notif   *notifier.Mock
	metrics *metrics.MockMetrics
	coord   *syncer.Coordinator
}

// newHarness wires a coordinator over a real local store and queue
// (both in-memory) and mock edges. The periodic interval is an hour so
// only explicit triggers run cycles.
func newHarness(t *testing.T, debounce time.Duration) *harness {
	t.Helper()

	h := &harness{
		kv:      kv.NewMock(),
		remote:  remote.NewMock(),
		events:  pubsub.NewMock("test-project"),
		notif:   notifier.NewMock(),
		metrics: metrics.NewMock(),
	}
	h.signal = connectivity.NewMonitor(func(ctx context.Context) error { return nil }, time.Minute)
	h.queue = queue.New(h.kv, 0)
	h.store = localstore.New(h.kv, h.queue, h.signal.IsOnline, 0)
	h.coord = syncer.NewCoordinator(
		h.store, h.queue, h.remote, h.signal, h.events, h.notif, h.metrics,
		"test-sub", time.Hour, debounce,
	)
	return h
}

func (h *harness) players(n int) []game.Player {
	players := make([]game.Player, n)
	for i := range players {
		players[i] = game.Player{ID: string(rune('a' + i)), Name: "Player", Skill: game.SkillC, Gender: game.GenderMale}
	}
	return players
}

func TestSyncNowMutualExclusion(t *testing.T) {
	h := newHarness(t, time.Millisecond)

	release := make(chan struct{})
	entered := make(chan struct{})
	h.remote.GetSnapshotFunc = func(ctx context.Context, date string) (*game.Snapshot, error) {
		close(entered)
		<-release
		return nil, nil
	}

	first := make(chan error, 1)
	go func() { first <- h.coord.SyncNow(context.Background()) }()

	<-entered
	assert.True(t, h.coord.Status().IsSyncing)
	err := h.coord.SyncNow(context.Background())
	assert.ErrorIs(t, err, syncer.ErrSyncInProgress)

	close(release)
	require.NoError(t, <-first)

	// Exactly one fetch: the overlapping request was refused, not queued.
	assert.Len(t, h.remote.GetCalls(), 1)
	assert.False(t, h.coord.Status().IsSyncing)
	assert.Equal(t, 2, h.metrics.Snapshot().SyncRuns)
	assert.Equal(t, 0, h.metrics.Snapshot().SyncFailures)
}

func TestSyncNowOfflineRefuses(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.signal.SetOnline(false)

	err := h.coord.SyncNow(context.Background())
	assert.ErrorIs(t, err, syncer.ErrOffline)
	assert.Empty(t, h.remote.GetCalls())
	assert.Equal(t, 0, h.metrics.Snapshot().SyncRuns)
}

func TestReconnectReplaysQueuedActions(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.coord.Start(ctx)
	defer h.coord.Stop()

	h.signal.SetOnline(false)
	h.store.Save(game.DefaultCourts(4), nil, h.players(4))
	h.store.Save(game.DefaultCourts(4), nil, h.players(5))
	require.Equal(t, 2, h.queue.Len())
	assert.True(t, h.coord.Status().PendingChanges == 2)

	h.signal.SetOnline(true)

	require.Eventually(t, func() bool {
		return h.coord.Status().PendingChanges == 0
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return h.coord.Status().LastSyncTime != nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, h.metrics.Snapshot().ActionsReplayed)
	assert.Empty(t, h.coord.Status().Conflicts)
}

func TestCycleAdoptsServerWhenLocalEmpty(t *testing.T) {
	h := newHarness(t, time.Millisecond)

	server := game.Snapshot{
		Courts:      game.DefaultCourts(4),
		Version:     9,
		DeviceID:    "device-peer",
		LastUpdated: time.Now(),
	}
	h.remote.GetSnapshotFunc = func(ctx context.Context, date string) (*game.Snapshot, error) {
		return &server, nil
	}

	require.NoError(t, h.coord.SyncNow(context.Background()))

	current := h.store.Current()
	require.NotNil(t, current)
	assert.Equal(t, int64(10), current.Version)
	assert.NotEqual(t, "device-peer", current.DeviceID)
	assert.Empty(t, h.coord.Status().Conflicts)
}

func TestCyclePushesWhenServerEmpty(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	saved := h.store.Save(game.DefaultCourts(4), nil, h.players(4))

	require.NoError(t, h.coord.SyncNow(context.Background()))

	require.Len(t, h.remote.PutSnapshotCalls, 1)
	assert.Equal(t, saved.Version, h.remote.PutSnapshotCalls[0].Snapshot.Version)

	// The push is announced so peers pick it up without polling.
	require.Len(t, h.events.SendMessageCalls, 1)
	evt, ok := h.events.SendMessageCalls[0].Data.(pubsub.ChangeEvent)
	require.True(t, ok)
	assert.Equal(t, saved.Version, evt.Version)
	assert.Equal(t, h.store.DeviceID(), evt.DeviceID)
}

func TestSameDeviceEchoIsNotAConflict(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	local := h.store.Save(game.DefaultCourts(4), nil, h.players(4))

	t.Run("server behind local pushes", func(t *testing.T) {
		h.remote.GetSnapshotFunc = func(ctx context.Context, date string) (*game.Snapshot, error) {
			stale := local
			stale.Version = local.Version - 1
			return &stale, nil
		}
		require.NoError(t, h.coord.SyncNow(context.Background()))
		assert.Empty(t, h.coord.Status().Conflicts)
		require.Len(t, h.remote.PutSnapshotCalls, 1)
	})

	t.Run("server ahead of local adopts", func(t *testing.T) {
		ahead := local
		ahead.Version = local.Version + 5
		h.remote.GetSnapshotFunc = func(ctx context.Context, date string) (*game.Snapshot, error) {
			return &ahead, nil
		}
		require.NoError(t, h.coord.SyncNow(context.Background()))
		assert.Empty(t, h.coord.Status().Conflicts)
		assert.Greater(t, h.store.Current().Version, ahead.Version)
	})
}

func TestConflictDetectionAndResolution(t *testing.T) {
	newConflicted := func(t *testing.T) (*harness, game.Snapshot) {
		h := newHarness(t, time.Millisecond)
		h.store.Save(game.DefaultCourts(4), nil, h.players(4))

		server := game.Snapshot{
			Courts:      game.DefaultCourts(2),
			Version:     7,
			DeviceID:    "device-peer",
			LastUpdated: time.Now(),
		}
		h.remote.GetSnapshotFunc = func(ctx context.Context, date string) (*game.Snapshot, error) {
			return &server, nil
		}
		require.NoError(t, h.coord.SyncNow(context.Background()))
		return h, server
	}

	t.Run("divergence from another device files a conflict", func(t *testing.T) {
		h, server := newConflicted(t)

		conflicts := h.coord.Status().Conflicts
		require.Len(t, conflicts, 1)
		assert.Equal(t, syncer.ConflictCourt, conflicts[0].Type)
		assert.Equal(t, server.Version, conflicts[0].ServerData.Version)

		// Local state is untouched until the operator decides.
		assert.Equal(t, h.store.DeviceID(), h.store.Current().DeviceID)
		assert.Len(t, h.store.Current().Courts, 4)

		assert.Equal(t, 1, h.metrics.Snapshot().ConflictsDetected)
		require.Len(t, h.notif.SendConflictDetectedCalls, 1)
		assert.Equal(t, "device-peer", h.notif.SendConflictDetectedCalls[0].ServerDevice)
	})

	t.Run("resolving with server adopts and pushes", func(t *testing.T) {
		h, server := newConflicted(t)
		conflictID := h.coord.Status().Conflicts[0].ID

		require.NoError(t, h.coord.Resolve(context.Background(), conflictID, syncer.ChoiceServer))

		current := h.store.Current()
		assert.Len(t, current.Courts, 2)
		assert.Greater(t, current.Version, server.Version)
		assert.Equal(t, h.store.DeviceID(), current.DeviceID)
		assert.Empty(t, h.coord.Status().Conflicts)

		require.NotEmpty(t, h.remote.PutSnapshotCalls)
		last := h.remote.PutSnapshotCalls[len(h.remote.PutSnapshotCalls)-1]
		assert.Equal(t, current.Version, last.Snapshot.Version)

		assert.Equal(t, 1, h.metrics.Snapshot().ConflictsResolved)
		require.Len(t, h.notif.SendConflictResolvedCalls, 1)
		assert.Equal(t, "server", h.notif.SendConflictResolvedCalls[0].Choice)
	})

	t.Run("resolving with local keeps state and pushes it", func(t *testing.T) {
		h, _ := newConflicted(t)
		conflictID := h.coord.Status().Conflicts[0].ID
		before := *h.store.Current()

		require.NoError(t, h.coord.Resolve(context.Background(), conflictID, syncer.ChoiceLocal))

		assert.Equal(t, before.Version, h.store.Current().Version)
		assert.Len(t, h.store.Current().Courts, 4)
		assert.Empty(t, h.coord.Status().Conflicts)

		require.NotEmpty(t, h.remote.PutSnapshotCalls)
		last := h.remote.PutSnapshotCalls[len(h.remote.PutSnapshotCalls)-1]
		assert.Equal(t, before.Version, last.Snapshot.Version)
	})

	t.Run("unknown conflict id", func(t *testing.T) {
		h, _ := newConflicted(t)
		err := h.coord.Resolve(context.Background(), "conflict-nope", syncer.ChoiceLocal)
		assert.ErrorIs(t, err, syncer.ErrConflictNotFound)
	})

	t.Run("invalid choice", func(t *testing.T) {
		h, _ := newConflicted(t)
		conflictID := h.coord.Status().Conflicts[0].ID
		err := h.coord.Resolve(context.Background(), conflictID, syncer.Choice("merge"))
		assert.Error(t, err)
		assert.Len(t, h.coord.Status().Conflicts, 1)
	})
}

func TestNewerConflictSupersedesPending(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.store.Save(game.DefaultCourts(4), nil, h.players(4))

	version := int64(7)
	h.remote.GetSnapshotFunc = func(ctx context.Context, date string) (*game.Snapshot, error) {
		return &game.Snapshot{
			Courts:   game.DefaultCourts(2),
			Version:  version,
			DeviceID: "device-peer",
		}, nil
	}

	require.NoError(t, h.coord.SyncNow(context.Background()))
	firstID := h.coord.Status().Conflicts[0].ID

	version = 8
	require.NoError(t, h.coord.SyncNow(context.Background()))

	conflicts := h.coord.Status().Conflicts
	require.Len(t, conflicts, 1)
	assert.NotEqual(t, firstID, conflicts[0].ID)
	assert.Equal(t, int64(8), conflicts[0].ServerData.Version)
	assert.Equal(t, 2, h.metrics.Snapshot().ConflictsDetected)

	err := h.coord.Resolve(context.Background(), firstID, syncer.ChoiceLocal)
	assert.ErrorIs(t, err, syncer.ErrConflictNotFound)
}

func TestDebounceCoalescesRapidSaves(t *testing.T) {
	h := newHarness(t, 30*time.Millisecond)

	for i := 0; i < 5; i++ {
		h.coord.Save(game.DefaultCourts(4), nil, h.players(i+1))
	}

	assert.Equal(t, 0, h.kv.SetCallCount("game_state"))
	require.Eventually(t, func() bool {
		return h.kv.SetCallCount("game_state") == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Trailing edge: the last state wins and the version moved once.
	current := h.store.Current()
	require.NotNil(t, current)
	assert.Equal(t, int64(1), current.Version)
	assert.Len(t, current.AvailablePlayers, 5)
}

func TestStopFlushesPendingSave(t *testing.T) {
	h := newHarness(t, time.Hour)

	h.coord.Save(game.DefaultCourts(4), nil, h.players(4))
	require.Nil(t, h.store.Current())

	h.coord.Stop()

	current := h.store.Current()
	require.NotNil(t, current)
	assert.Equal(t, int64(1), current.Version)
}

func TestDroppedActionsAreSurfaced(t *testing.T) {
	h := newHarness(t, time.Millisecond)

	// Ceiling of 1: the action fails once, is retried on the next
	// cycle, then dropped.
	h.queue = queue.New(h.kv, 1)
	h.coord = syncer.NewCoordinator(
		h.store, h.queue, h.remote, h.signal, nil, h.notif, h.metrics,
		"", time.Hour, time.Millisecond,
	)

	payload, err := msgpack.Marshal(game.Snapshot{Version: 1, DeviceID: "device-test"})
	require.NoError(t, err)
	require.NoError(t, h.queue.Enqueue(localstore.ActionUpdateGameState, payload))

	h.remote.PutSnapshotFunc = func(ctx context.Context, date string, snapshot game.Snapshot) error {
		return errors.New("backend put rejected")
	}

	require.NoError(t, h.coord.SyncNow(context.Background()))
	assert.Equal(t, 1, h.queue.Len())
	assert.Empty(t, h.notif.SendDroppedActionsWarningCalls)

	require.NoError(t, h.coord.SyncNow(context.Background()))
	assert.Equal(t, 0, h.queue.Len())

	assert.Equal(t, 1, h.metrics.Snapshot().ActionsDropped)
	require.Len(t, h.notif.SendDroppedActionsWarningCalls, 1)
	assert.Equal(t, 1, h.notif.SendDroppedActionsWarningCalls[0].Count)
	assert.Equal(t, []string{localstore.ActionUpdateGameState}, h.notif.SendDroppedActionsWarningCalls[0].ActionTypes)
}

func TestPeerChangeEventTriggersSync(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.coord.Start(ctx)
	defer h.coord.Stop()

	// The listener registers asynchronously.
	require.Eventually(t, func() bool {
		return h.events.Publish(pubsub.ChangeEvent{Date: "2026-08-31", DeviceID: "device-peer", Version: 3}) == nil &&
			len(h.remote.GetCalls()) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOwnChangeEventIsIgnored(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.coord.Start(ctx)
	defer h.coord.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, h.events.Publish(pubsub.ChangeEvent{Date: "2026-08-31", DeviceID: h.store.DeviceID(), Version: 3}))
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, h.remote.GetCalls())
}

func TestSyncFailureLeavesQueueIntact(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.remote.GetSnapshotFunc = func(ctx context.Context, date string) (*game.Snapshot, error) {
		return nil, errors.New("backend unreachable")
	}

	err := h.coord.SyncNow(context.Background())
	require.Error(t, err)

	status := h.coord.Status()
	assert.Nil(t, status.LastSyncTime)
	assert.False(t, status.IsSyncing)
	assert.Equal(t, 1, h.metrics.Snapshot().SyncFailures)
}
