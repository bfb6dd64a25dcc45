// Package repository provides durable persistence of session state.
// The engine treats every backend purely as key/value storage of the
// serialized session snapshot; recovery is backend-independent.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore is the persistence contract required by the engine:
// put/get/list of opaque serialized session state. Get returns
// common.ErrNotFound when no snapshot exists for the id.
type SessionStore interface {
	Put(ctx context.Context, id uuid.UUID, state []byte) error
	Get(ctx context.Context, id uuid.UUID) ([]byte, error)
	List(ctx context.Context) ([]uuid.UUID, error)
}
