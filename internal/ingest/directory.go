package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/entity"
	"github.com/caseflow-app/client-aggregator/internal/session"
)

// FileResult is the per-file outcome of a directory run.
type FileResult struct {
	Path      string
	FileID    string
	ClientKey string
	Err       string
}

// DirStats aggregates a directory run.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Loader feeds extraction-result JSON files from a directory tree into a
// session. The client key hint for each file is the name of its parent
// folder under the root; a client_key set inside the payload overrides
// the hint.
type Loader struct {
	Workers int
	Schema  map[string]any
	// DefaultCurrency, when set, fills in salary fields whose payload
	// carries no currency_code.
	DefaultCurrency string
	log             *slog.Logger
}

func NewLoader(workers int, logger *slog.Logger) *Loader {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Workers: workers, Schema: BuildExtractionJSONSchema(), log: logger}
}

// LoadDirectory walks root, validates and parses every *.json file and
// ingests it into the session on a bounded worker group. Per-file
// failures are collected, not fatal; the walk error is the only hard
// failure.
func (l *Loader) LoadDirectory(ctx context.Context, sess *session.Session, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, fmt.Errorf("root path is required")
	}

	var (
		mu      sync.Mutex
		results []FileResult
		stats   DirStats
	)
	record := func(r FileResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
		if r.Err == "" {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Workers)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		mu.Lock()
		stats.Scanned++
		mu.Unlock()
		if skipHidden && isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if constants.NormalizeExt(filepath.Ext(path)) != constants.ExtractionExtension {
			return nil
		}
		mu.Lock()
		stats.Matched++
		mu.Unlock()

		hint := clientHintFor(root, path)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			record(l.loadFile(ctx, sess, hint, path))
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil && walkErr == nil {
		walkErr = err
	}
	return results, stats, walkErr
}

// LoadFile validates, parses and ingests a single extraction result.
func (l *Loader) LoadFile(ctx context.Context, sess *session.Session, clientHint, path string) FileResult {
	return l.loadFile(ctx, sess, clientHint, path)
}

// ParseFile reads, validates and decodes one extraction-result file.
// The returned hint is the caller-supplied routing hint; the document's
// own client_key, when present, overrides it downstream.
func (l *Loader) ParseFile(path string) (entity.ExtractedDocument, error) {
	var doc entity.ExtractedDocument

	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read: %w", err)
	}
	if err := ValidateJSONAgainstSchema(l.Schema, raw); err != nil {
		return doc, fmt.Errorf("payload: %w", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode: %w", err)
	}
	if doc.Type != "" {
		if canonical, ok := constants.CanonicalizeDocumentType(string(doc.Type)); ok {
			doc.Type = canonical
		}
	}
	if l.DefaultCurrency != "" {
		for i := range doc.Fields {
			if s := doc.Fields[i].Salary; s != nil && s.CurrencyCode == "" {
				s.CurrencyCode = l.DefaultCurrency
			}
		}
	}
	return doc, nil
}

// ClientHintFor derives the routing hint from the first path element
// under the root: <root>/<client>/<file>.json.
func ClientHintFor(root, path string) string {
	return clientHintFor(root, path)
}

func (l *Loader) loadFile(ctx context.Context, sess *session.Session, hint, path string) FileResult {
	res := FileResult{Path: path, ClientKey: hint}

	doc, err := l.ParseFile(path)
	if err != nil {
		res.Err = err.Error()
		l.log.Warn("ingest.file.invalid", "path", path, "error", err)
		return res
	}
	res.FileID = doc.ID
	if doc.ClientKey != "" {
		res.ClientKey = doc.ClientKey
	}

	if err := sess.IngestFile(ctx, hint, doc); err != nil {
		res.Err = err.Error()
		l.log.Error("ingest.file.rejected", "path", path, "file_id", doc.ID, "error", err)
		return res
	}
	l.log.Info("ingest.file.ok", "path", path, "file_id", doc.ID, "client_key", res.ClientKey)
	return res
}

// clientHintFor derives the routing hint from the first path element
// under the root: <root>/<client>/<file>.json.
func clientHintFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
