package notifier

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendDroppedActionsWarningFunc func(count int, actionTypes []string, dryRun bool) error
	SendConflictDetectedFunc      func(conflictID string, localVersion, serverVersion int64, serverDevice string, dryRun bool) error
	SendConflictResolvedFunc      func(conflictID, choice string, dryRun bool) error

	// Call records
	SendDroppedActionsWarningCalls []struct {
		Count       int
		ActionTypes []string
	}
	SendConflictDetectedCalls []struct {
		ConflictID    string
		LocalVersion  int64
		ServerVersion int64
		ServerDevice  string
	}
	SendConflictResolvedCalls []struct {
		ConflictID string
		Choice     string
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendDroppedActionsWarning(count int, actionTypes []string, dryRun bool) error {
	m.mu.Lock()
	m.SendDroppedActionsWarningCalls = append(m.SendDroppedActionsWarningCalls, struct {
		Count       int
		ActionTypes []string
	}{count, actionTypes})
	fn := m.SendDroppedActionsWarningFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(count, actionTypes, dryRun)
	}
	return nil
}

func (m *Mock) SendConflictDetected(conflictID string, localVersion, serverVersion int64, serverDevice string, dryRun bool) error {
	m.mu.Lock()
	m.SendConflictDetectedCalls = append(m.SendConflictDetectedCalls, struct {
		ConflictID    string
		LocalVersion  int64
		ServerVersion int64
		ServerDevice  string
	}{conflictID, localVersion, serverVersion, serverDevice})
	fn := m.SendConflictDetectedFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(conflictID, localVersion, serverVersion, serverDevice, dryRun)
	}
	return nil
}

func (m *Mock) SendConflictResolved(conflictID, choice string, dryRun bool) error {
	m.mu.Lock()
	m.SendConflictResolvedCalls = append(m.SendConflictResolvedCalls, struct {
		ConflictID string
		Choice     string
	}{conflictID, choice})
	fn := m.SendConflictResolvedFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(conflictID, choice, dryRun)
	}
	return nil
}
