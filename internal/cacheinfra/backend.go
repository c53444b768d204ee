package cacheinfra

import (
	"context"
	"time"
)

// Backend is the method set shared by every store implementation.
type Backend interface {
	HashGet(ctx context.Context, key, field string) (string, bool, error)
	HashPut(ctx context.Context, key, field, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*RedisStore)(nil)
	_ Backend = (*MemoryStore)(nil)
	_ Backend = DisabledStore{}
)

// New validates cfg and builds the configured backend.
func New(cfg Config, opts ...Option) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverMemory:
		store, err := NewMemoryStore(cfg.Memory, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverDisabled:
		return NewDisabledStore(), nil
	default:
		store, err := NewRedisStore(cfg.Redis, cfg.Breaker, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
