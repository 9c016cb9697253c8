// Package kv provides the durable key-value backends that hold the offline
// patient queue. A backend stores opaque blobs; it knows nothing about
// records. Get returns sentinel.ErrNotFound for an absent key.
package kv

import "context"

// Store is a minimal blob store keyed by string.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
