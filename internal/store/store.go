package store

import (
	"context"
	"errors"
)

// DefaultKey is the key holding the serialized catalog document.
const DefaultKey = "propstack_data"

var (
	// ErrKeyNotFound is returned by a KeyValueStore when the key has no value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrPersistenceUnavailable wraps every failure of the backing store.
	ErrPersistenceUnavailable = errors.New("persistent store unavailable")
)

// KeyValueStore is the only boundary the catalog crosses to persist data.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
