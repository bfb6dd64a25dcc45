package async

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/entity"
	"github.com/caseflow-app/client-aggregator/internal/repository"
	"github.com/caseflow-app/client-aggregator/internal/session"
)

func testDoc(id, client string) entity.ExtractedDocument {
	return entity.ExtractedDocument{
		ID:        id,
		ClientKey: client,
		Timestamp: "2024-05-01",
		Fields: []entity.FieldValue{
			{Name: "nif", Kind: constants.FieldText, Raw: "123456789"},
		},
	}
}

func TestIngestQueueDrainsOnShutdown(t *testing.T) {
	ctx := context.Background()
	sess := session.New(repository.NewMemoryStore(), nil)
	_, err := sess.Start(ctx)
	require.NoError(t, err)

	q := NewIngestQueue(sess, slog.Default(), WithWorkers(3), WithQueueSize(8))
	const docs = 20
	for i := 0; i < docs; i++ {
		require.NoError(t, q.Enqueue(ctx, Job{
			ClientHint:  "fallback",
			Doc:         testDoc(fmt.Sprintf("doc-%d", i), fmt.Sprintf("client-%d", i%4)),
			SubmittedAt: time.Now(),
		}))
	}
	q.Shutdown(ctx)

	st := sess.Status()
	assert.Equal(t, docs, st.FilesProcessed)
	assert.Len(t, st.PerClientDocumentCounts, 4)
}

func TestIngestQueueEnqueueAfterShutdown(t *testing.T) {
	ctx := context.Background()
	sess := session.New(repository.NewMemoryStore(), nil)
	_, err := sess.Start(ctx)
	require.NoError(t, err)

	q := NewIngestQueue(sess, slog.Default(), WithWorkers(1))
	q.Shutdown(ctx)
	q.Shutdown(ctx) // idempotent

	require.NoError(t, q.Enqueue(ctx, Job{Doc: testDoc("late", "joao")}))
	assert.Equal(t, 0, sess.Status().FilesProcessed)
}
