// Package session owns the set of per-client aggregators active in one
// bulk-import run: routing, per-file progress, dedupe, persistence and
// consolidation.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/aggregate"
	"github.com/caseflow-app/client-aggregator/internal/common"
	"github.com/caseflow-app/client-aggregator/internal/entity"
	"github.com/caseflow-app/client-aggregator/internal/repository"
)

// Session is one bulk-import run. Ingests for distinct client keys run
// concurrently; ingests for the same key are serialized by that
// client's aggregator. Once finished or failed the session accepts no
// further mutation.
type Session struct {
	store repository.SessionStore
	log   *slog.Logger

	mu       sync.Mutex
	id       uuid.UUID
	created  time.Time
	status   constants.SessionStatus
	closing  bool // no new ingests admitted; in-flight ones complete
	clients  map[string]*aggregate.Aggregator
	seen     map[string]struct{}
	outcomes []entity.FileOutcome
	seq      int

	filesProcessed int
	filesErrored   int
	failReason     string

	inflight sync.WaitGroup

	final          map[string]entity.ClientProfile
	finalPersisted bool
}

// New creates a pending session backed by the given store.
func New(store repository.SessionStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:   store,
		log:     logger,
		id:      uuid.New(),
		created: time.Now().UTC(),
		status:  constants.SessionPending,
		clients: make(map[string]*aggregate.Aggregator),
		seen:    make(map[string]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Start transitions pending to running and persists the initial state.
// The initial persistence is best-effort like every other progress
// write; only the final consolidation write is a hard error.
func (s *Session) Start(ctx context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() || s.closing {
		return s.id, common.ErrSessionClosed
	}
	if s.status == constants.SessionPending {
		s.status = constants.SessionRunning
		s.persistLocked(ctx)
		s.log.Info("session.started", "session_id", s.id)
	}
	return s.id, nil
}

// IngestFile routes one extraction result to the right client
// aggregator. clientKeyHint is typically derived from the source folder
// name; an explicit ClientKey on the document takes precedence. A file
// id already seen is a recovered no-op (replays after a crash do not
// double-count). Malformed per-file input is absorbed into the outcome
// log; only a closed session is a hard error.
func (s *Session) IngestFile(ctx context.Context, clientKeyHint string, doc entity.ExtractedDocument) error {
	s.mu.Lock()
	if s.status.Terminal() || s.closing {
		s.mu.Unlock()
		return common.ErrSessionClosed
	}
	if s.status == constants.SessionPending {
		s.status = constants.SessionRunning
	}

	if doc.ID == "" {
		s.recordOutcomeLocked(ctx, entity.FileOutcome{
			Status: constants.OutcomeError,
			Error:  "missing document id",
			At:     time.Now().UTC(),
		})
		s.mu.Unlock()
		return nil
	}
	if _, dup := s.seen[doc.ID]; dup {
		s.log.Info("session.file.duplicate", "session_id", s.id, "file_id", doc.ID)
		s.recordOutcomeLocked(ctx, entity.FileOutcome{
			FileID: doc.ID,
			Status: constants.OutcomeDuplicate,
			At:     time.Now().UTC(),
		})
		s.mu.Unlock()
		return nil
	}

	clientKey := doc.ClientKey
	if clientKey == "" {
		clientKey = clientKeyHint
	}
	if clientKey == "" {
		s.seen[doc.ID] = struct{}{}
		s.recordOutcomeLocked(ctx, entity.FileOutcome{
			FileID: doc.ID,
			Status: constants.OutcomeError,
			Error:  "no client key: neither override nor folder hint present",
			At:     time.Now().UTC(),
		})
		s.mu.Unlock()
		return nil
	}

	s.seen[doc.ID] = struct{}{}
	s.seq++
	seq := s.seq
	agg, ok := s.clients[clientKey]
	if !ok {
		agg = aggregate.New(clientKey, s.log)
		s.clients[clientKey] = agg
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	// The aggregator serializes ingests for this client key; other
	// clients are untouched.
	agg.Ingest(doc, seq)

	s.mu.Lock()
	s.recordOutcomeLocked(ctx, entity.FileOutcome{
		FileID:    doc.ID,
		ClientKey: clientKey,
		Status:    constants.OutcomeOK,
		At:        time.Now().UTC(),
	})
	s.mu.Unlock()
	s.inflight.Done()
	return nil
}

// recordOutcomeLocked appends a per-file outcome, bumps the counters and
// persists progress best-effort. Callers hold s.mu.
func (s *Session) recordOutcomeLocked(ctx context.Context, o entity.FileOutcome) {
	s.outcomes = append(s.outcomes, o)
	switch o.Status {
	case constants.OutcomeOK:
		s.filesProcessed++
	case constants.OutcomeError:
		s.filesErrored++
		s.log.Warn("session.file.errored", "session_id", s.id, "file_id", o.FileID, "error", o.Error)
	}
	s.persistLocked(ctx)
}

// persistLocked writes the current snapshot. Progress writes are
// best-effort: a store failure here is logged and the import continues.
func (s *Session) persistLocked(ctx context.Context) {
	state, err := json.Marshal(s.stateLocked())
	if err != nil {
		s.log.Error("session.persist.marshal_failed", "session_id", s.id, "error", err)
		return
	}
	if err := s.store.Put(ctx, s.id, state); err != nil {
		s.log.Warn("session.persist.failed", "session_id", s.id, "error", err)
	}
}

func (s *Session) stateLocked() entity.SessionState {
	profiles := make(map[string]entity.ClientProfile, len(s.clients))
	for key, agg := range s.clients {
		profiles[key] = agg.Snapshot()
	}
	outcomes := make([]entity.FileOutcome, len(s.outcomes))
	copy(outcomes, s.outcomes)
	return entity.SessionState{
		ID:             s.id,
		CreatedAt:      s.created,
		Status:         s.status,
		Outcomes:       outcomes,
		Profiles:       profiles,
		FilesProcessed: s.filesProcessed,
		FilesErrored:   s.filesErrored,
		Seq:            s.seq,
		Error:          s.failReason,
	}
}

// Status is the read-only view of session progress.
type Status struct {
	SessionID               uuid.UUID
	State                   constants.SessionStatus
	FilesProcessed          int
	FilesErrored            int
	PerClientDocumentCounts map[string]int
}

// Status reports progress without mutating anything.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int, len(s.clients))
	for key, agg := range s.clients {
		counts[key] = agg.Documents()
	}
	return Status{
		SessionID:               s.id,
		State:                   s.status,
		FilesProcessed:          s.filesProcessed,
		FilesErrored:            s.filesErrored,
		PerClientDocumentCounts: counts,
	}
}

// Outcomes returns a copy of the ordered per-file log.
func (s *Session) Outcomes() []entity.FileOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.FileOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Finish consolidates the session: no further ingests are accepted and
// one finalized snapshot per client is returned for the caller to
// persist into the case-management store. In-flight ingests already
// admitted complete first. Finish is idempotent; if the final store
// write fails the snapshots are kept and the error is surfaced so the
// caller can retry Finish.
func (s *Session) Finish(ctx context.Context) (map[string]entity.ClientProfile, error) {
	s.mu.Lock()
	if s.status == constants.SessionFailed {
		s.mu.Unlock()
		return nil, common.ErrSessionClosed
	}
	if s.final != nil && s.finalPersisted {
		final := s.final
		s.mu.Unlock()
		return final, nil
	}
	s.closing = true
	s.mu.Unlock()

	s.inflight.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.final == nil {
		s.status = constants.SessionFinished
		s.final = make(map[string]entity.ClientProfile, len(s.clients))
		for key, agg := range s.clients {
			s.final[key] = agg.Snapshot()
		}
	}

	state, err := json.Marshal(s.stateLocked())
	if err != nil {
		return nil, fmt.Errorf("marshal final session state: %w", err)
	}
	if err := s.store.Put(ctx, s.id, state); err != nil {
		s.log.Error("session.finish.persist_failed", "session_id", s.id, "error", err)
		return nil, fmt.Errorf("persist consolidated session %s: %w", s.id, common.ErrStoreUnavailable)
	}
	s.finalPersisted = true
	s.log.Info("session.finished", "session_id", s.id, "clients", len(s.final), "files_processed", s.filesProcessed, "files_errored", s.filesErrored)
	return s.final, nil
}

// Fail marks the session permanently failed. In-flight ingests already
// admitted are allowed to complete so no profile is left half-applied;
// new ingests are rejected immediately.
func (s *Session) Fail(ctx context.Context, reason string) {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return
	}
	s.closing = true
	s.mu.Unlock()

	s.inflight.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = constants.SessionFailed
	s.failReason = reason
	s.persistLocked(ctx)
	s.log.Error("session.failed", "session_id", s.id, "reason", reason)
}

// Resume rebuilds a session from its persisted snapshot. The recovered
// session's Status and eventual Finish are indistinguishable from an
// uninterrupted run; files already in the outcome log stay deduplicated.
func Resume(ctx context.Context, store repository.SessionStore, id uuid.UUID, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var state entity.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	s := &Session{
		store:          store,
		log:            logger,
		id:             state.ID,
		created:        state.CreatedAt,
		status:         state.Status,
		clients:        make(map[string]*aggregate.Aggregator, len(state.Profiles)),
		seen:           make(map[string]struct{}, len(state.Outcomes)),
		outcomes:       state.Outcomes,
		seq:            state.Seq,
		filesProcessed: state.FilesProcessed,
		filesErrored:   state.FilesErrored,
		failReason:     state.Error,
	}
	for key, p := range state.Profiles {
		s.clients[key] = aggregate.FromProfile(p, logger)
	}
	for _, o := range state.Outcomes {
		if o.FileID != "" {
			s.seen[o.FileID] = struct{}{}
		}
	}
	if state.Status == constants.SessionFinished {
		s.closing = true
		s.final = make(map[string]entity.ClientProfile, len(s.clients))
		for key, agg := range s.clients {
			s.final[key] = agg.Snapshot()
		}
		s.finalPersisted = true
	}
	logger.Info("session.resumed", "session_id", s.id, "status", s.status, "files_processed", s.filesProcessed)
	return s, nil
}
