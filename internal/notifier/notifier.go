package notifier

// Notifier defines a high-level interface for telling the club's
// operators about sync events that would otherwise be invisible.
// End users never see these; they go to the ops channel.
// This decouples the rest of the application from the specific
// notification provider (e.g., Slack).
type Notifier interface {
	// SendDroppedActionsWarning reports offline actions that were
	// permanently dropped after the retry ceiling. Queued mutations
	// silently disappearing is exactly the kind of thing an operator
	// should hear about.
	SendDroppedActionsWarning(count int, actionTypes []string, dryRun bool) error

	// SendConflictDetected announces a local/server divergence awaiting
	// manual resolution.
	SendConflictDetected(conflictID string, localVersion, serverVersion int64, serverDevice string, dryRun bool) error

	// SendConflictResolved announces the operator's choice.
	SendConflictResolved(conflictID, choice string, dryRun bool) error
}
