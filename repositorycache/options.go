package repositorycache

import (
	"time"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/rs/zerolog"
)

// Collection prefixes for versioned page sets. The owner id follows the
// prefix in every page and version key.
const (
	PostsByAuthor    = "posts:"
	PostSearch       = "posts:search:"
	CommentsByPost   = "comments:"
	RepliesByComment = "comment-replies:"
	SavedPostsByUser = "saved-posts:"
)

// TTLPolicy holds the lifetime of each kind of cached entry. A zero
// duration falls back to the cache default.
type TTLPolicy struct {
	UserByID         time.Duration `koanf:"user_by_id"`
	UserByName       time.Duration `koanf:"user_by_name"`
	PostByID         time.Duration `koanf:"post_by_id"`
	PostOnSave       time.Duration `koanf:"post_on_save"`
	PostsByAuthor    time.Duration `koanf:"posts_by_author"`
	PostSearch       time.Duration `koanf:"post_search"`
	CommentByID      time.Duration `koanf:"comment_by_id"`
	CommentsByPost   time.Duration `koanf:"comments_by_post"`
	RepliesByComment time.Duration `koanf:"replies_by_comment"`
	SavedPostsByUser time.Duration `koanf:"saved_posts_by_user"`
}

func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		UserByID:         time.Hour,
		UserByName:       5 * time.Minute,
		PostByID:         0,
		PostOnSave:       30 * time.Minute,
		PostsByAuthor:    10 * time.Minute,
		PostSearch:       2 * time.Minute,
		CommentByID:      0,
		CommentsByPost:   5 * time.Minute,
		RepliesByComment: 5 * time.Minute,
		SavedPostsByUser: 10 * time.Minute,
	}
}

type options struct {
	logger zerolog.Logger
	ttl    TTLPolicy
	keys   cache.KeySerializer
}

// Option configures a cached repository.
type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTTLPolicy replaces the default entry lifetimes.
func WithTTLPolicy(policy TTLPolicy) Option {
	return func(o *options) {
		o.ttl = policy
	}
}

// WithKeySerializer sets the serializer that turns query filters into
// cache key segments.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(o *options) {
		o.keys = keys
	}
}

func applyOptions(component string, opts []Option) options {
	o := options{logger: zerolog.Nop(), ttl: DefaultTTLPolicy()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.keys == nil {
		o.keys = cache.NewKeySerializer()
	}
	o.logger = o.logger.With().Str("component", component).Logger()
	return o
}
