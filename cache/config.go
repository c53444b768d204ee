package cache

import (
	"time"

	"github.com/goliatone/go-blog-cache/internal/cacheinfra"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	DriverRedis    = cacheinfra.DriverRedis
	DriverMemory   = cacheinfra.DriverMemory
	DriverDisabled = cacheinfra.DriverDisabled
)

// Config exposes store configuration options for consumers of the cache package.
type Config struct {
	Driver     string        `koanf:"driver"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	Codec      string        `koanf:"codec"`
	Redis      RedisConfig   `koanf:"redis"`
	Breaker    BreakerConfig `koanf:"breaker"`
	Memory     MemoryConfig  `koanf:"memory"`
}

// RedisConfig mirrors the redis connection options.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// BreakerConfig mirrors the circuit breaker options.
type BreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	MaxRequests         uint32        `koanf:"max_requests"`
	Interval            time.Duration `koanf:"interval"`
	Timeout             time.Duration `koanf:"timeout"`
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
}

// MemoryConfig mirrors the in-process sturdyc options.
type MemoryConfig struct {
	Capacity           int           `koanf:"capacity"`
	NumShards          int           `koanf:"num_shards"`
	EvictionPercentage int           `koanf:"eviction_percentage"`
	MaxTTL             time.Duration `koanf:"max_ttl"`
	EvictionInterval   time.Duration `koanf:"eviction_interval"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCodec returns the codec named by the configuration.
func (c Config) NewCodec() (Codec, error) {
	return CodecByName(c.Codec)
}

// Options returns the cache options implied by the configuration.
func (c Config) Options() ([]Option, error) {
	codec, err := c.NewCodec()
	if err != nil {
		return nil, err
	}
	return []Option{WithCodec(codec), WithDefaultTTL(c.DefaultTTL)}, nil
}

// StoreOption configures NewStore.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger   zerolog.Logger
	listener func(name, from, to string)
}

// WithStoreLogger sets the backend logger.
func WithStoreLogger(logger zerolog.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = logger }
}

// WithBreakerListener receives circuit breaker transitions of the redis backend.
func WithBreakerListener(fn func(name, from, to string)) StoreOption {
	return func(o *storeOptions) { o.listener = fn }
}

// NewStore constructs the store backend selected by cfg.Driver.
func NewStore(cfg Config, opts ...StoreOption) (ManagedStore, error) {
	o := storeOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	infraOpts := []cacheinfra.Option{cacheinfra.WithLogger(o.logger)}
	if o.listener != nil {
		listener := o.listener
		infraOpts = append(infraOpts, cacheinfra.WithStateListener(func(name string, from, to gobreaker.State) {
			listener(name, from.String(), to.String())
		}))
	}

	backend, err := cacheinfra.New(cfg.toInternal(), infraOpts...)
	if err != nil {
		return nil, err
	}
	return backend, nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Driver:     c.Driver,
		DefaultTTL: c.DefaultTTL,
		Codec:      c.Codec,
		Redis: cacheinfra.RedisConfig{
			Addr:         c.Redis.Addr,
			Username:     c.Redis.Username,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			PoolSize:     c.Redis.PoolSize,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
		},
		Breaker: cacheinfra.BreakerConfig{
			Enabled:             c.Breaker.Enabled,
			MaxRequests:         c.Breaker.MaxRequests,
			Interval:            c.Breaker.Interval,
			Timeout:             c.Breaker.Timeout,
			ConsecutiveFailures: c.Breaker.ConsecutiveFailures,
		},
		Memory: cacheinfra.MemoryConfig{
			Capacity:           c.Memory.Capacity,
			NumShards:          c.Memory.NumShards,
			EvictionPercentage: c.Memory.EvictionPercentage,
			MaxTTL:             c.Memory.MaxTTL,
			EvictionInterval:   c.Memory.EvictionInterval,
		},
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Driver:     cfg.Driver,
		DefaultTTL: cfg.DefaultTTL,
		Codec:      cfg.Codec,
		Redis: RedisConfig{
			Addr:         cfg.Redis.Addr,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		},
		Breaker: BreakerConfig{
			Enabled:             cfg.Breaker.Enabled,
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            cfg.Breaker.Interval,
			Timeout:             cfg.Breaker.Timeout,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		},
		Memory: MemoryConfig{
			Capacity:           cfg.Memory.Capacity,
			NumShards:          cfg.Memory.NumShards,
			EvictionPercentage: cfg.Memory.EvictionPercentage,
			MaxTTL:             cfg.Memory.MaxTTL,
			EvictionInterval:   cfg.Memory.EvictionInterval,
		},
	}
}
