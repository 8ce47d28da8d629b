// Package store provides the persisted key-value collaborator used to keep
// favorites and evolutions across process restarts.
package store

import (
	"context"
	"errors"
)

// KV is a string-keyed byte store. Get reports ok=false for a missing key;
// Remove of a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrUnsupportedEngine is returned by Open for an unknown engine name.
	ErrUnsupportedEngine = errors.New("unsupported store engine")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")

	// ErrTransactionConflict indicates a SurrealDB transaction conflict.
	// Callers may retry the write.
	ErrTransactionConflict = errors.New("transaction conflict")
)
