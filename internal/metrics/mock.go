package metrics

import "sync"

// MockMetrics is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type MockMetrics struct {
	mu sync.Mutex

	SyncRuns          int
	SyncFailures      int
	SyncDurations     []float64
	ActionsReplayed   int
	ActionsDropped    int
	ConflictsDetected int
	ConflictsResolved int
	PendingActions    int
	StartupTime       float64
	NotifSent         int
	NotifFailed       int
}

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncSyncRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncRuns++
}

func (m *MockMetrics) IncSyncFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncFailures++
}

func (m *MockMetrics) ObserveSyncDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncDurations = append(m.SyncDurations, seconds)
}

func (m *MockMetrics) AddActionsReplayed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActionsReplayed += count
}

func (m *MockMetrics) AddActionsDropped(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActionsDropped += count
}

func (m *MockMetrics) IncConflictsDetected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConflictsDetected++
}

func (m *MockMetrics) IncConflictsResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConflictsResolved++
}

func (m *MockMetrics) SetPendingActions(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PendingActions = count
}

func (m *MockMetrics) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = seconds
}

func (m *MockMetrics) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSent++
}

func (m *MockMetrics) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailed++
}

// Snapshot returns a copy of the recorded counters.
func (m *MockMetrics) Snapshot() MockMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MockMetrics{
		SyncRuns:          m.SyncRuns,
		SyncFailures:      m.SyncFailures,
		ActionsReplayed:   m.ActionsReplayed,
		ActionsDropped:    m.ActionsDropped,
		ConflictsDetected: m.ConflictsDetected,
		ConflictsResolved: m.ConflictsResolved,
		PendingActions:    m.PendingActions,
	}
}
