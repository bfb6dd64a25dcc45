// Package importer is the application-facing façade over the
// aggregation engine: argument validation, session lifecycle, and
// error-code mapping for callers.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/caseflow-app/client-aggregator/internal/common"
	"github.com/caseflow-app/client-aggregator/internal/entity"
	"github.com/caseflow-app/client-aggregator/internal/export"
	"github.com/caseflow-app/client-aggregator/internal/ingest"
	"github.com/caseflow-app/client-aggregator/internal/repository"
	"github.com/caseflow-app/client-aggregator/internal/session"
)

// Service handles import business logic.
type Service struct {
	store  repository.SessionStore
	export *export.Service
	logger *slog.Logger
}

// NewService creates a new import service.
func NewService(store repository.SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		export: export.NewService(logger),
		logger: logger,
	}
}

// RunRequest represents bulk import parameters.
type RunRequest struct {
	RootPath        string
	Workers         int
	SkipHidden      bool
	DefaultCurrency string
}

// RunResult represents the outcome of one bulk import run.
type RunResult struct {
	SessionID  uuid.UUID
	Statistics ingest.DirStats
	Files      []ingest.FileResult
	Profiles   map[string]entity.ClientProfile
}

// Run executes a full import: start a session, feed it every extraction
// result under the root, and consolidate.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		s.logger.Error("import run missing root path")
		return nil, status.Error(codes.InvalidArgument, "root path is required")
	}

	sess := session.New(s.store, s.logger)
	sessionID, err := sess.Start(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "start session: %v", err)
	}
	s.logger.Info("starting bulk import", "session_id", sessionID, "root", root)

	loader := ingest.NewLoader(req.Workers, s.logger)
	loader.DefaultCurrency = req.DefaultCurrency
	files, stats, err := loader.LoadDirectory(ctx, sess, root, req.SkipHidden)
	if err != nil {
		sess.Fail(ctx, err.Error())
		return nil, status.Errorf(codes.InvalidArgument, "load directory: %v", err)
	}

	profiles, err := sess.Finish(ctx)
	if err != nil {
		if errors.Is(err, common.ErrStoreUnavailable) {
			return nil, status.Errorf(codes.Unavailable, "persist consolidated session: %v", err)
		}
		return nil, status.Errorf(codes.Internal, "finish session: %v", err)
	}

	s.logger.Info("bulk import completed",
		"session_id", sessionID,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"clients", len(profiles),
	)
	return &RunResult{
		SessionID:  sessionID,
		Statistics: stats,
		Files:      files,
		Profiles:   profiles,
	}, nil
}

// Resume rebuilds an interrupted session and re-imports the root; files
// already in the outcome log are deduplicated by the session, so a
// replay never double-counts.
func (s *Service) Resume(ctx context.Context, sessionID string, req RunRequest) (*RunResult, error) {
	id, err := uuid.Parse(strings.TrimSpace(sessionID))
	if err != nil {
		s.logger.Error("invalid session_id format for resume", "session_id", sessionID, "error", err)
		return nil, status.Error(codes.InvalidArgument, "session_id must be a UUID")
	}
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		return nil, status.Error(codes.InvalidArgument, "root path is required")
	}

	sess, err := session.Resume(ctx, s.store, id, s.logger)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "session %s not found", id)
		}
		return nil, status.Errorf(codes.Internal, "resume session: %v", err)
	}
	if sess.Status().State.Terminal() {
		return nil, status.Errorf(codes.FailedPrecondition, "session %s is already %s", id, sess.Status().State)
	}

	loader := ingest.NewLoader(req.Workers, s.logger)
	loader.DefaultCurrency = req.DefaultCurrency
	files, stats, err := loader.LoadDirectory(ctx, sess, root, req.SkipHidden)
	if err != nil {
		sess.Fail(ctx, err.Error())
		return nil, status.Errorf(codes.InvalidArgument, "load directory: %v", err)
	}

	profiles, err := sess.Finish(ctx)
	if err != nil {
		if errors.Is(err, common.ErrSessionClosed) {
			return nil, status.Error(codes.FailedPrecondition, "session is closed")
		}
		if errors.Is(err, common.ErrStoreUnavailable) {
			return nil, status.Errorf(codes.Unavailable, "persist consolidated session: %v", err)
		}
		return nil, status.Errorf(codes.Internal, "finish session: %v", err)
	}

	s.logger.Info("resumed import completed", "session_id", id, "succeeded", stats.Succeeded, "failed", stats.Failed)
	return &RunResult{
		SessionID:  id,
		Statistics: stats,
		Files:      files,
		Profiles:   profiles,
	}, nil
}

// SessionState loads the stored snapshot of a session.
func (s *Service) SessionState(ctx context.Context, sessionID string) (*entity.SessionState, error) {
	id, err := uuid.Parse(strings.TrimSpace(sessionID))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "session_id must be a UUID")
	}
	raw, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "session %s not found", id)
		}
		return nil, status.Errorf(codes.Unavailable, "load session: %v", err)
	}
	var state entity.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, status.Errorf(codes.Internal, "decode session: %v", err)
	}
	return &state, nil
}

// ListSessions returns the ids of every stored session.
func (s *Service) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "list sessions: %v", err)
	}
	return ids, nil
}

// ExportReport builds the XLSX audit workbook for a stored session.
func (s *Service) ExportReport(ctx context.Context, sessionID string) ([]byte, error) {
	state, err := s.SessionState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.export.SessionReportXLSX(*state)
}
