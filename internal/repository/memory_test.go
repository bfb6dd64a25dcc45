package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow-app/client-aggregator/internal/common"
)

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	require.NoError(t, store.Put(ctx, id, []byte(`{"status":"RUNNING"}`)))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"RUNNING"}`, string(got))

	// overwrite replaces the previous snapshot
	require.NoError(t, store.Put(ctx, id, []byte(`{"status":"FINISHED"}`)))
	got, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"FINISHED"}`, string(got))
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	a, b := uuid.New(), uuid.New()
	require.NoError(t, store.Put(ctx, a, []byte(`{}`)))
	require.NoError(t, store.Put(ctx, b, []byte(`{}`)))

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	in := []byte(`{"n":1}`)
	require.NoError(t, store.Put(ctx, id, in))
	in[5] = '9' // caller reuses its buffer

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(got))

	got[5] = '7' // reader scribbles on the returned copy
	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(again))
}
