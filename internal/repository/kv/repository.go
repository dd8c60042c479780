// Package kv is the durable key-value port the state containers persist through.
package kv

import "context"

// Store persists opaque values by key. Get returns domain.ErrNotFound for a
// missing key; Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
