// Package cartstore holds the durable key-value drivers the cart
// persists through: file (default, the localStorage analog), Redis
// and Postgres. Drivers move opaque bytes only; what the bytes mean
// is the cart package's business.
package cartstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a driver when no value was ever stored
// for the key.
var ErrNotFound = errors.New("no value stored for key")

// KV is the contract every driver implements.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
