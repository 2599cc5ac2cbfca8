package interfaces

import (
	"context"
	"errors"
)

// ErrNotFound is returned (wrapped) by KVStore.Get for absent keys
var ErrNotFound = errors.New("key not found")

// KVStore is the local key-value store the task list is persisted to.
// Values are opaque serialized bytes.
type KVStore interface {
	// Get returns the value for key, or an error wrapping ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value for key
	Put(ctx context.Context, key string, value []byte) error

	// Transaction runs fn with exclusive access to the store, also against
	// other processes sharing the backend. Writes made through tx are applied
	// only when fn returns nil. fn may be called more than once.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx KVTx) error) error

	Close() error
}

// KVTx reads and writes inside a KVStore transaction. Callers read every key
// they need before the first Put; Firestore rejects reads after writes.
type KVTx interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
