// Package store provides the durable key/value medium the save system writes
// to. The primary medium is a bbolt database; a plain JSON file acts as the
// secondary medium when bbolt cannot be opened or a transaction fails.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: key not found")

// KV is the contract every durable medium satisfies. Each call runs in its
// own transaction; no locks are held between calls.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	ListKeys(ctx context.Context) ([]string, error)
}
