package async

import (
	"context"
	"time"

	"github.com/caseflow-app/client-aggregator/internal/entity"
)

// Job is the smallest useful unit: one parsed extraction result plus
// its folder-derived routing hint.
type Job struct {
	ClientHint  string
	Doc         entity.ExtractedDocument
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
