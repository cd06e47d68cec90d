package repository

import (
	"context"
	"time"
)

// StateStore abstracts ephemeral key-value state, currently holding
// failed-login counters. Implementations: Redis (production) or in-memory
// (local dev / single instance).
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Incr atomically increments a counter, setting the TTL when the key is
	// first created, and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
