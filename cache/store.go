package cache

import (
	"context"
	"time"
)

// Hash fields used by EntityCache entries.
const (
	FieldByID   = "BY_ID"
	FieldByName = "BY_NAME"
)

// Store is the primitive key-value surface the caches are built on.
// Implementations must make HashPut, SetIfAbsent and Increment atomic per key.
// A ttl of zero means the key does not expire.
type Store interface {
	HashGet(ctx context.Context, key, field string) (string, bool, error)
	HashPut(ctx context.Context, key, field, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, keys ...string) error
}

// ManagedStore is a Store that owns a connection or background resources.
type ManagedStore interface {
	Store
	Ping(ctx context.Context) error
	Close() error
}
