package di

import (
	"context"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/internal/config"
	"github.com/goliatone/go-blog-cache/internal/logging"
	"github.com/goliatone/go-blog-cache/internal/metrics"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/repositorycache"
	"github.com/goliatone/go-blog-cache/service"
	"github.com/goliatone/go-blog-cache/store/bunstore"
	"github.com/goliatone/go-errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// Container wires the cache store, the primary database, the cached
// repositories and the services built on them. Every component is a
// singleton owned by the container.
type Container struct {
	config   config.Config
	logger   zerolog.Logger
	registry prometheus.Registerer
	metrics  *metrics.CacheMetrics

	store     cache.ManagedStore
	ownsStore bool
	db        *bun.DB
	ownsDB    bool
	keys      cache.KeySerializer

	users      *repositorycache.Users
	posts      *repositorycache.Posts
	comments   *repositorycache.Comments
	savedPosts *repositorycache.SavedPosts
	likes      *repositorycache.Likes

	likeService     *service.Likes
	bookmarkService *service.Bookmarks
	commentService  *service.Comments
}

// Option customizes NewContainer.
type Option func(*Container)

// WithLogger replaces the logger built from the logging configuration.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithRegisterer registers the cache metrics with reg instead of a
// private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) { c.registry = reg }
}

// WithStore uses an existing cache store. The container will not close it.
func WithStore(store cache.ManagedStore) Option {
	return func(c *Container) { c.store = store }
}

// WithDB uses an existing database handle. The container will not close it.
func WithDB(db *bun.DB) Option {
	return func(c *Container) { c.db = db }
}

// NewContainer builds every component from cfg.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config: cfg,
		logger: logging.New(cfg.Logging),
		keys:   cache.NewKeySerializer(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	if err := c.initStore(); err != nil {
		return nil, err
	}
	if err := c.initDB(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initRepositories(); err != nil {
		c.Close()
		return nil, err
	}
	c.initServices()

	c.logger.Info().
		Str("cache_driver", cfg.Cache.Driver).
		Str("codec", cfg.Cache.Codec).
		Str("database", cfg.Database.Driver).
		Msg("container ready")
	return c, nil
}

// NewContainerWithDefaults loads configuration from defaults, the config
// file and the environment.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewContainer(ctx, cfg)
}

func (c *Container) initMetrics() error {
	if !c.config.Metrics.Enabled {
		return nil
	}
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
	}
	m, err := metrics.New(c.registry)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to register cache metrics")
	}
	c.metrics = m
	return nil
}

func (c *Container) initStore() error {
	if c.store != nil {
		return nil
	}

	storeOpts := []cache.StoreOption{cache.WithStoreLogger(logging.Component(c.logger, "cache_store"))}
	if c.metrics != nil {
		storeOpts = append(storeOpts, cache.WithBreakerListener(c.metrics.BreakerChanged))
	}
	store, err := cache.NewStore(c.config.Cache, storeOpts...)
	if err != nil {
		return err
	}
	c.store = store
	c.ownsStore = true
	return nil
}

func (c *Container) initDB(ctx context.Context) error {
	if c.db == nil {
		db, err := bunstore.Open(c.config.Database)
		if err != nil {
			return err
		}
		c.db = db
		c.ownsDB = true
	}
	return bunstore.CreateSchema(ctx, c.db)
}

func (c *Container) cacheOptions() ([]cache.Option, error) {
	opts, err := c.config.Cache.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, cache.WithLogger(logging.Component(c.logger, "cache")))
	if c.metrics != nil {
		opts = append(opts, cache.WithRecorder(c.metrics))
	}
	return opts, nil
}

func (c *Container) initRepositories() error {
	cacheOpts, err := c.cacheOptions()
	if err != nil {
		return err
	}

	userCache, err := cache.NewEntityCache[*model.User](c.store, cacheOpts...)
	if err != nil {
		return err
	}
	postCache, err := cache.NewEntityCache[*model.Post](c.store, cacheOpts...)
	if err != nil {
		return err
	}
	commentCache, err := cache.NewEntityCache[*model.Comment](c.store, cacheOpts...)
	if err != nil {
		return err
	}
	pages := cache.NewPaginationCache(c.store, cacheOpts...)

	repoOpts := []repositorycache.Option{
		repositorycache.WithLogger(c.logger),
		repositorycache.WithTTLPolicy(c.config.TTL),
		repositorycache.WithKeySerializer(c.keys),
	}
	c.users = repositorycache.NewUsers(bunstore.NewUsers(c.db), userCache, repoOpts...)
	c.posts = repositorycache.NewPosts(bunstore.NewPosts(c.db), postCache, pages, repoOpts...)
	c.comments = repositorycache.NewComments(bunstore.NewComments(c.db), commentCache, pages, repoOpts...)
	c.savedPosts = repositorycache.NewSavedPosts(bunstore.NewSavedPosts(c.db), pages, repoOpts...)
	c.likes = repositorycache.NewLikes(bunstore.NewLikes(c.db), repoOpts...)
	return nil
}

func (c *Container) initServices() {
	opts := []service.Option{service.WithLogger(c.logger)}
	c.likeService = service.NewLikes(c.likes, c.posts, c.comments, opts...)
	c.bookmarkService = service.NewBookmarks(c.savedPosts, c.posts, opts...)
	c.commentService = service.NewComments(c.comments, c.posts, opts...)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config { return c.config }

func (c *Container) Logger() zerolog.Logger { return c.logger }

// Store returns the cache store shared by every cache.
func (c *Container) Store() cache.ManagedStore { return c.store }

func (c *Container) DB() *bun.DB { return c.db }

func (c *Container) KeySerializer() cache.KeySerializer { return c.keys }

// Metrics is nil when metrics are disabled.
func (c *Container) Metrics() *metrics.CacheMetrics { return c.metrics }

func (c *Container) Users() *repositorycache.Users { return c.users }

func (c *Container) Posts() *repositorycache.Posts { return c.posts }

func (c *Container) Comments() *repositorycache.Comments { return c.comments }

func (c *Container) SavedPosts() *repositorycache.SavedPosts { return c.savedPosts }

func (c *Container) Likes() *repositorycache.Likes { return c.likes }

func (c *Container) LikeService() *service.Likes { return c.likeService }

func (c *Container) BookmarkService() *service.Bookmarks { return c.bookmarkService }

func (c *Container) CommentService() *service.Comments { return c.commentService }

// Ping checks both the cache store and the database.
func (c *Container) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "cache store unreachable")
	}
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "database unreachable")
	}
	return nil
}

// Close releases the resources the container created itself.
func (c *Container) Close() error {
	var first error
	if c.ownsStore && c.store != nil {
		if err := c.store.Close(); err != nil {
			first = err
		}
	}
	if c.ownsDB && c.db != nil {
		if err := c.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
