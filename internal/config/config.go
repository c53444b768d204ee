// Package config loads the application configuration in three layers:
// built-in defaults, an optional YAML file, then BLOGCACHE_ environment
// variables. Later layers win.
package config

import (
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/internal/logging"
	"github.com/goliatone/go-blog-cache/repositorycache"
	"github.com/goliatone/go-blog-cache/store/bunstore"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from environment variables before mapping.
	EnvPrefix = "BLOGCACHE_"
	// PathEnvVar overrides the config file location.
	PathEnvVar = EnvPrefix + "CONFIG"
)

// DefaultPaths are searched in order when PathEnvVar is not set.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
}

type Config struct {
	Database bunstore.Config           `koanf:"database"`
	Cache    cache.Config              `koanf:"cache"`
	Logging  logging.Config            `koanf:"logging"`
	TTL      repositorycache.TTLPolicy `koanf:"ttl"`
	Metrics  MetricsConfig             `koanf:"metrics"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Database: bunstore.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
		Logging:  logging.DefaultConfig(),
		TTL:      repositorycache.DefaultTTLPolicy(),
		Metrics:  MetricsConfig{Enabled: true},
	}
}

// Load reads defaults, the config file found by FindFile, and the
// environment.
func Load() (Config, error) {
	return LoadFile(FindFile())
}

// LoadFile is Load with an explicit file. An empty path skips the file layer.
func LoadFile(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryInternal, "failed to load defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.Wrap(err, errors.CategoryBadInput, "failed to load config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryInternal, "failed to load environment")
	}

	cfg := Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryBadInput, "failed to unmarshal configuration")
	}
	cfg.Logging.Output = defaults.Logging.Output

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FindFile returns the first config file that exists, or "".
func FindFile() string {
	if path := os.Getenv(PathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envKeys maps variables whose koanf path cannot be derived by splitting
// on the first underscore.
var envKeys = map[string]string{
	"cache_redis_addr":                   "cache.redis.addr",
	"cache_redis_username":               "cache.redis.username",
	"cache_redis_password":               "cache.redis.password",
	"cache_redis_db":                     "cache.redis.db",
	"cache_redis_pool_size":              "cache.redis.pool_size",
	"cache_redis_dial_timeout":           "cache.redis.dial_timeout",
	"cache_redis_read_timeout":           "cache.redis.read_timeout",
	"cache_redis_write_timeout":          "cache.redis.write_timeout",
	"cache_breaker_enabled":              "cache.breaker.enabled",
	"cache_breaker_max_requests":         "cache.breaker.max_requests",
	"cache_breaker_interval":             "cache.breaker.interval",
	"cache_breaker_timeout":              "cache.breaker.timeout",
	"cache_breaker_consecutive_failures": "cache.breaker.consecutive_failures",
	"cache_memory_capacity":              "cache.memory.capacity",
	"cache_memory_num_shards":            "cache.memory.num_shards",
	"cache_memory_eviction_percentage":   "cache.memory.eviction_percentage",
	"cache_memory_max_ttl":               "cache.memory.max_ttl",
	"cache_memory_eviction_interval":     "cache.memory.eviction_interval",
}

// envTransform maps BLOGCACHE_CACHE_DRIVER to cache.driver and
// BLOGCACHE_TTL_USER_BY_ID to ttl.user_by_id.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	if path, ok := envKeys[key]; ok {
		return path
	}
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid cache configuration")
	}

	nonNegative := validation.Min(time.Duration(0))
	if err := errors.ValidateWithOzzo(func() error {
		return validation.Errors{
			"database.driver": validation.Validate(c.Database.Driver,
				validation.Required, validation.In(bunstore.DriverSQLite, bunstore.DriverPostgres)),
			"database.dsn":            validation.Validate(c.Database.DSN, validation.Required),
			"logging.format":          validation.Validate(strings.ToLower(c.Logging.Format), validation.In("json", "console")),
			"ttl.user_by_id":          validation.Validate(c.TTL.UserByID, nonNegative),
			"ttl.user_by_name":        validation.Validate(c.TTL.UserByName, nonNegative),
			"ttl.post_by_id":          validation.Validate(c.TTL.PostByID, nonNegative),
			"ttl.post_on_save":        validation.Validate(c.TTL.PostOnSave, nonNegative),
			"ttl.posts_by_author":     validation.Validate(c.TTL.PostsByAuthor, nonNegative),
			"ttl.post_search":         validation.Validate(c.TTL.PostSearch, nonNegative),
			"ttl.comment_by_id":       validation.Validate(c.TTL.CommentByID, nonNegative),
			"ttl.comments_by_post":    validation.Validate(c.TTL.CommentsByPost, nonNegative),
			"ttl.replies_by_comment":  validation.Validate(c.TTL.RepliesByComment, nonNegative),
			"ttl.saved_posts_by_user": validation.Validate(c.TTL.SavedPostsByUser, nonNegative),
		}.Filter()
	}, "invalid configuration"); err != nil {
		return err
	}
	return nil
}
