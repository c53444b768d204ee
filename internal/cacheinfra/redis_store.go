package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// StateListener is notified when the redis circuit breaker changes state.
type StateListener func(name string, from, to gobreaker.State)

// Option configures a backend.
type Option func(*backendOptions)

type backendOptions struct {
	logger   zerolog.Logger
	listener StateListener
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *backendOptions) { o.logger = logger }
}

func WithStateListener(listener StateListener) Option {
	return func(o *backendOptions) { o.listener = listener }
}

func newBackendOptions(opts []Option) backendOptions {
	o := backendOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// RedisStore implements the cache store primitives on redis. Every call goes
// through a circuit breaker so an unreachable server costs one fast failure
// instead of a dial timeout per request.
type RedisStore struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
	owned   bool
}

// NewRedisStore dials redis with cfg. The returned store owns the client.
func NewRedisStore(cfg RedisConfig, breaker BreakerConfig, opts ...Option) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, &ConfigError{Field: "Redis.Addr", Message: "is required"}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	store := NewRedisStoreFromClient(client, breaker, opts...)
	store.owned = true
	return store, nil
}

// NewRedisStoreFromClient wraps an existing client. Close leaves it open.
func NewRedisStoreFromClient(client redis.UniversalClient, breaker BreakerConfig, opts ...Option) *RedisStore {
	o := newBackendOptions(opts)
	store := &RedisStore{
		client: client,
		logger: o.logger.With().Str("component", "redis_store").Logger(),
	}
	if breaker.Enabled {
		store.breaker = newBreaker(breaker, store.logger, o.listener)
	}
	return store
}

func newBreaker(cfg BreakerConfig, logger zerolog.Logger, listener StateListener) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			if listener != nil {
				listener(name, from, to)
			}
		},
	})
}

// execute runs fn through the breaker when one is configured.
func execute[T any](s *RedisStore, fn func() (T, error)) (T, error) {
	if s.breaker == nil {
		return fn()
	}

	res, err := s.breaker.Execute(func() (any, error) {
		return fn()
	})
	out, _ := res.(T)
	return out, err
}

func (s *RedisStore) HashGet(ctx context.Context, key, field string) (string, bool, error) {
	val, err := execute(s, func() (string, error) {
		return s.client.HGet(ctx, key, field).Result()
	})
	return lookup(val, err)
}

// HashPut writes the field and refreshes the key ttl in one MULTI block.
func (s *RedisStore) HashPut(ctx context.Context, key, field, value string, ttl time.Duration) error {
	_, err := execute(s, func() ([]redis.Cmder, error) {
		return s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, value)
			if ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			return nil
		})
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := execute(s, func() (string, error) {
		return s.client.Get(ctx, key).Result()
	})
	return lookup(val, err)
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := execute(s, func() (string, error) {
		return s.client.Set(ctx, key, value, ttl).Result()
	})
	return err
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return execute(s, func() (bool, error) {
		return s.client.SetNX(ctx, key, value, ttl).Result()
	})
}

func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	return execute(s, func() (int64, error) {
		return s.client.Incr(ctx, key).Result()
	})
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := execute(s, func() (int64, error) {
		return s.client.Del(ctx, keys...).Result()
	})
	return err
}

func (s *RedisStore) Ping(ctx context.Context) error {
	_, err := execute(s, func() (string, error) {
		return s.client.Ping(ctx).Result()
	})
	return err
}

// BreakerState reports the breaker state, closed when no breaker is configured.
func (s *RedisStore) BreakerState() gobreaker.State {
	if s.breaker == nil {
		return gobreaker.StateClosed
	}
	return s.breaker.State()
}

func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

func lookup(val string, err error) (string, bool, error) {
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
