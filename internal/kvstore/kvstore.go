// Package kvstore is the key-value adapter under the aggregate store. Values are
// opaque JSON documents addressed by string keys.
package kvstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("kvstore: key not found")
	ErrConflict = errors.New("kvstore: value changed concurrently")
)

type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one entry per key in the same order; absent keys yield nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// CompareAndSwap writes value only if the stored value still equals old.
	// A nil old means the key must not exist yet. It returns ErrConflict
	// when the precondition fails.
	CompareAndSwap(ctx context.Context, key string, old, value []byte) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
