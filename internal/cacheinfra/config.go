package cacheinfra

import (
	"time"
)

// Backend drivers.
const (
	DriverRedis    = "redis"
	DriverMemory   = "memory"
	DriverDisabled = "disabled"
)

// Config selects and tunes a store backend.
type Config struct {
	// Driver is one of redis, memory or disabled. Default: redis
	Driver string

	// DefaultTTL applies to entries written without an explicit ttl.
	// Must be greater than 0. Default: 1h
	DefaultTTL time.Duration

	// Codec names the payload encoding: json or msgpack. Default: json
	Codec string

	Redis   RedisConfig
	Breaker BreakerConfig
	Memory  MemoryConfig
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BreakerConfig tunes the circuit breaker in front of redis. While open,
// every call fails fast and the caches treat it as a miss.
type BreakerConfig struct {
	Enabled bool

	// MaxRequests allowed through while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// ConsecutiveFailures trips the breaker. Must be greater than 0.
	ConsecutiveFailures uint32
}

// MemoryConfig holds the sturdyc sizing used by the in-process backend.
type MemoryConfig struct {
	// Capacity defines the maximum number of keys. Must be greater than 0.
	Capacity int

	// NumShards determines the number of shards. Must be greater than 0.
	NumShards int

	// EvictionPercentage is evicted when the capacity is reached. 1-100.
	EvictionPercentage int

	// MaxTTL bounds every entry, including keys written without a ttl.
	MaxTTL time.Duration

	// EvictionInterval sets how often expired keys are swept. Zero keeps the library default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Driver:     DriverRedis,
		DefaultTTL: time.Hour,
		Codec:      "json",
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Breaker: BreakerConfig{
			Enabled:             true,
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
		},
		Memory: MemoryConfig{
			Capacity:           10000,
			NumShards:          256,
			EvictionPercentage: 10,
			MaxTTL:             24 * time.Hour,
		},
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverRedis, DriverMemory, DriverDisabled:
	default:
		return &ConfigError{Field: "Driver", Message: "must be one of redis, memory, disabled"}
	}

	if c.DefaultTTL <= 0 {
		return &ConfigError{Field: "DefaultTTL", Message: "must be greater than 0"}
	}

	switch c.Codec {
	case "", "json", "msgpack":
	default:
		return &ConfigError{Field: "Codec", Message: "must be json or msgpack"}
	}

	if c.Driver == DriverRedis {
		if c.Redis.Addr == "" {
			return &ConfigError{Field: "Redis.Addr", Message: "is required"}
		}
		if c.Redis.DB < 0 {
			return &ConfigError{Field: "Redis.DB", Message: "must be non-negative"}
		}
		if c.Breaker.Enabled && c.Breaker.ConsecutiveFailures == 0 {
			return &ConfigError{Field: "Breaker.ConsecutiveFailures", Message: "must be greater than 0"}
		}
		if c.Breaker.Timeout < 0 || c.Breaker.Interval < 0 {
			return &ConfigError{Field: "Breaker", Message: "durations must be non-negative"}
		}
	}

	if c.Driver == DriverMemory {
		if c.Memory.Capacity <= 0 {
			return &ConfigError{Field: "Memory.Capacity", Message: "must be greater than 0"}
		}
		if c.Memory.NumShards <= 0 {
			return &ConfigError{Field: "Memory.NumShards", Message: "must be greater than 0"}
		}
		if c.Memory.EvictionPercentage < 1 || c.Memory.EvictionPercentage > 100 {
			return &ConfigError{Field: "Memory.EvictionPercentage", Message: "must be between 1 and 100"}
		}
		if c.Memory.MaxTTL <= 0 {
			return &ConfigError{Field: "Memory.MaxTTL", Message: "must be greater than 0"}
		}
		if c.Memory.EvictionInterval < 0 {
			return &ConfigError{Field: "Memory.EvictionInterval", Message: "must be non-negative"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
