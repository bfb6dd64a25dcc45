package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/caseflow-app/client-aggregator/internal/session"
)

// IngestQueue fans parsed documents out to a bounded worker pool that
// ingests them into one session. Per-client serialization is the
// session's concern; the pool only bounds parallelism.
type IngestQueue struct {
	sess    *session.Session
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*IngestQueue)

func WithWorkers(n int) Option {
	return func(q *IngestQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *IngestQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithIngestTimeout(d time.Duration) Option {
	return func(q *IngestQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewIngestQueue(sess *session.Session, logger *slog.Logger, opts ...Option) *IngestQueue {
	q := &IngestQueue{
		sess:    sess,
		logger:  logger,
		workers: 4,
		timeout: time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *IngestQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.sess.IngestFile(ctx, job.ClientHint, job.Doc)
					cancel()

					if err != nil {
						q.logger.Error("ingest failed", "worker_id", workerID, "file_id", job.Doc.ID, "error", err)
					} else {
						q.logger.Info("ingested document", "worker_id", workerID, "file_id", job.Doc.ID, "client_hint", job.ClientHint)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *IngestQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "file_id", job.Doc.ID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document for ingest", "file_id", job.Doc.ID)
	default:
		q.logger.Warn("queue full, applying backpressure", "file_id", job.Doc.ID)
		q.ch <- job
	}
	return nil
}

func (q *IngestQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
