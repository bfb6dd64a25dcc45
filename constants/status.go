package constants

// SessionStatus is the canonical lifecycle status for an import session.
type SessionStatus string

// Stable values (stored verbatim in the session snapshot).
const (
	SessionPending  SessionStatus = "PENDING"  // created, no files yet
	SessionRunning  SessionStatus = "RUNNING"  // at least one ingest received
	SessionFinished SessionStatus = "FINISHED" // consolidated, read-only
	SessionFailed   SessionStatus = "FAILED"   // terminal failure, read-only
)

// Terminal reports whether the session accepts no further mutation.
func (s SessionStatus) Terminal() bool {
	return s == SessionFinished || s == SessionFailed
}

// OutcomeStatus is the per-file result recorded in the session log.
type OutcomeStatus string

const (
	OutcomeOK        OutcomeStatus = "OK"
	OutcomeError     OutcomeStatus = "ERROR"
	OutcomeDuplicate OutcomeStatus = "DUPLICATE"
)
