package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/caseflow-app/client-aggregator/internal/async"
	"github.com/caseflow-app/client-aggregator/internal/common"
	"github.com/caseflow-app/client-aggregator/internal/ingest"
	"github.com/caseflow-app/client-aggregator/internal/repository"
	"github.com/caseflow-app/client-aggregator/internal/session"
)

// importerd watches directories for extraction-result files and folds
// them into one long-running import session. On SIGINT/SIGTERM the
// queue drains and the session is consolidated.
func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if len(cfg.Import.WatchRoots) == 0 {
		log.Fatal("at least one watch root is required (import.watch_roots or IMPORT_WATCH_ROOTS)")
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The engine packages log through slog.
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, closeStore, err := repository.OpenStore(ctx, cfg.Store, slogger)
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}
	defer closeStore()

	sess := session.New(store, slogger)
	sessionID, err := sess.Start(ctx)
	if err != nil {
		log.Fatalf("start session: %v", err)
	}
	log.Infow("session started", "session_id", sessionID)

	loader := ingest.NewLoader(cfg.Import.Workers, slogger)
	loader.DefaultCurrency = cfg.Import.DefaultCurrency
	queue := async.NewIngestQueue(sess, slogger,
		async.WithWorkers(cfg.Import.Workers),
		async.WithQueueSize(cfg.Import.QueueSize),
		async.WithIngestTimeout(cfg.Import.IngestTimeout),
	)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Import.WatchRoots,
		InitialScan: true,
		Debounce:    cfg.Import.WatchDebounce,
	}, slogger)
	if err != nil {
		log.Fatalf("start watcher: %v", err)
	}
	log.Infof("watching %d root(s)", len(cfg.Import.WatchRoots))

	go func() {
		for err := range watchErrs {
			log.Warnw("watcher error", "error", err)
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case path, ok := <-events:
			if !ok {
				break loop
			}
			doc, err := loader.ParseFile(path)
			if err != nil {
				log.Warnw("skipping invalid extraction result", "path", path, "error", err)
				continue
			}
			_ = queue.Enqueue(ctx, async.Job{
				ClientHint:  hintFor(cfg.Import.WatchRoots, path),
				Doc:         doc,
				SubmittedAt: time.Now(),
			})
		}
	}

	log.Info("shutting down...")
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)

	if _, err := sess.Finish(drainCtx); err != nil {
		log.Errorw("consolidation failed, session state kept for retry", "session_id", sessionID, "error", err)
		os.Exit(1)
	}
	log.Infow("session consolidated", "session_id", sessionID)
	fmt.Println("stopped.")
}

func hintFor(roots []string, path string) string {
	for _, root := range roots {
		if hint := ingest.ClientHintFor(root, path); hint != "" {
			return hint
		}
	}
	return ""
}

func loadConfig() (*common.Config, error) {
	if path := os.Getenv("IMPORTERD_CONFIG"); path != "" {
		return common.LoadConfigFile(path)
	}
	cfg := common.LoadConfig()
	if roots := os.Getenv("IMPORT_WATCH_ROOTS"); roots != "" {
		for _, r := range strings.Split(roots, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.Import.WatchRoots = append(cfg.Import.WatchRoots, r)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
