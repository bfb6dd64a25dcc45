package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/caseflow-app/client-aggregator/constants"
)

// FileOutcome is one line of the session's ordered per-file log.
type FileOutcome struct {
	FileID    string                  `json:"file_id"`
	ClientKey string                  `json:"client_key,omitempty"`
	Status    constants.OutcomeStatus `json:"status"`
	Error     string                  `json:"error,omitempty"`
	At        time.Time               `json:"at"`
}

// SessionState is the serialized snapshot of an import session. It is
// the exact payload round-tripped through the SessionStore: a session
// recovered from it must be indistinguishable from an uninterrupted
// run.
type SessionState struct {
	ID             uuid.UUID                `json:"id"`
	CreatedAt      time.Time                `json:"created_at"`
	Status         constants.SessionStatus  `json:"status"`
	Outcomes       []FileOutcome            `json:"outcomes"`
	Profiles       map[string]ClientProfile `json:"profiles"`
	FilesProcessed int                      `json:"files_processed"`
	FilesErrored   int                      `json:"files_errored"`
	Seq            int                      `json:"seq"`
	Error          string                   `json:"error,omitempty"`
}
