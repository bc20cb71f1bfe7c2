package remote

import (
	"context"
	"sync"

	"github.com/nmdr-club/courtsync/internal/game"
)

// MockClient is a mock implementation of the Client interface for
// testing. It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	PutSnapshotFunc func(ctx context.Context, date string, snapshot game.Snapshot) error
	GetSnapshotFunc func(ctx context.Context, date string) (*game.Snapshot, error)
	PingFunc        func(ctx context.Context) error

	// Call records
	PutSnapshotCalls []struct {
		Date     string
		Snapshot game.Snapshot
	}
	GetSnapshotCalls []string
	PingCalls        int
}

// NewMock creates a new mock instance.
func NewMock() *MockClient {
	return &MockClient{}
}

func (m *MockClient) PutSnapshot(ctx context.Context, date string, snapshot game.Snapshot) error {
	m.mu.Lock()
	m.PutSnapshotCalls = append(m.PutSnapshotCalls, struct {
		Date     string
		Snapshot game.Snapshot
	}{date, snapshot})
	fn := m.PutSnapshotFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, date, snapshot)
	}
	return nil
}

func (m *MockClient) GetSnapshot(ctx context.Context, date string) (*game.Snapshot, error) {
	m.mu.Lock()
	m.GetSnapshotCalls = append(m.GetSnapshotCalls, date)
	fn := m.GetSnapshotFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, date)
	}
	return nil, nil
}

func (m *MockClient) Ping(ctx context.Context) error {
	m.mu.Lock()
	m.PingCalls++
	fn := m.PingFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil
}

// GetCalls returns a snapshot of the recorded GetSnapshot calls.
func (m *MockClient) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.GetSnapshotCalls...)
}
