package syncer

import (
	"context"
	"sync"

	"github.com/nmdr-club/courtsync/internal/game"
)

// MockSyncer implements Syncer for testing.
type MockSyncer struct {
	mu sync.Mutex

	SyncNowFunc func(ctx context.Context) error
	ResolveFunc func(ctx context.Context, conflictID string, choice Choice) error
	StatusFunc  func() Status

	StartCalls   int
	StopCalls    int
	FlushCalls   int
	SyncNowCalls int
	SaveCalls    []pendingState
	ResolveCalls []MockResolveCall
}

// MockResolveCall records one Resolve invocation.
type MockResolveCall struct {
	ConflictID string
	Choice     Choice
}

var _ Syncer = (*MockSyncer)(nil)

func (m *MockSyncer) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls++
}

func (m *MockSyncer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCalls++
}

func (m *MockSyncer) Save(courts []game.Court, teams []game.Team, players []game.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, pendingState{courts: courts, teams: teams, players: players})
}

func (m *MockSyncer) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalls++
}

func (m *MockSyncer) SyncNow(ctx context.Context) error {
	m.mu.Lock()
	m.SyncNowCalls++
	m.mu.Unlock()
	if m.SyncNowFunc != nil {
		return m.SyncNowFunc(ctx)
	}
	return nil
}

func (m *MockSyncer) Resolve(ctx context.Context, conflictID string, choice Choice) error {
	m.mu.Lock()
	m.ResolveCalls = append(m.ResolveCalls, MockResolveCall{ConflictID: conflictID, Choice: choice})
	m.mu.Unlock()
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, conflictID, choice)
	}
	return nil
}

func (m *MockSyncer) Status() Status {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return Status{}
}
