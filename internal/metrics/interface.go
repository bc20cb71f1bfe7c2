package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSyncRuns()
	IncSyncFailures()
	ObserveSyncDuration(seconds float64)
	AddActionsReplayed(count int)
	AddActionsDropped(count int)
	IncConflictsDetected()
	IncConflictsResolved()
	SetPendingActions(count int)
	SetStartupTime(seconds float64)
	IncNotifSent()
	IncNotifFailed()
}
