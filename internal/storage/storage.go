// Package storage provides the key/value backends that client-side state
// (recent searches, bookmark dates) is persisted to. Backends mirror the
// places a browser keeps such state: a local-storage file, a cookie jar file,
// and a shared redis instance. All of them are last-write-wins; callers read
// before they write and never lock across processes.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a string-keyed byte store.
type Backend interface {
	// Get returns the stored value, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A positive ttl makes the value expire;
	// backends without expiry ignore it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
