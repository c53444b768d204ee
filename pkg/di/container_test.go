package di

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/internal/config"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/goliatone/go-blog-cache/store/bunstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return namedConfig(t.Name())
}

// namedConfig gives every test its own in-memory database.
func namedConfig(name string) config.Config {
	cfg := config.Default()
	cfg.Cache.Driver = cache.DriverMemory
	cfg.Database.DSN = "file:" + strings.ReplaceAll(name, "/", "_") + "?mode=memory&cache=shared"
	cfg.Logging.Level = "error"
	return cfg
}

func newTestContainer(t *testing.T, cfg config.Config, opts ...Option) *Container {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	c, err := NewContainer(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewContainer(t *testing.T) {
	c := newTestContainer(t, testConfig(t))

	if c.Store() == nil {
		t.Error("expected cache store")
	}
	if c.DB() == nil {
		t.Error("expected database")
	}
	if c.KeySerializer() == nil {
		t.Error("expected key serializer")
	}
	if c.Metrics() == nil {
		t.Error("expected metrics when enabled")
	}
	if c.Users() == nil || c.Posts() == nil || c.Comments() == nil || c.SavedPosts() == nil || c.Likes() == nil {
		t.Error("expected every cached repository")
	}
	if c.LikeService() == nil || c.BookmarkService() == nil || c.CommentService() == nil {
		t.Error("expected every service")
	}
	if c.Config().Cache.Driver != cache.DriverMemory {
		t.Errorf("unexpected driver %q", c.Config().Cache.Driver)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown cache driver", func(c *config.Config) { c.Cache.Driver = "memcached" }},
		{"unknown database driver", func(c *config.Config) { c.Database.Driver = "oracle" }},
		{"unknown codec", func(c *config.Config) { c.Cache.Codec = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			if _, err := NewContainer(context.Background(), cfg, WithLogger(zerolog.Nop())); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewContainer_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	c := newTestContainer(t, cfg)
	if c.Metrics() != nil {
		t.Error("expected no metrics")
	}
}

func TestNewContainer_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	newTestContainer(t, testConfig(t), WithRegisterer(reg))

	// a second registration of the same collectors must fail
	if _, err := NewContainer(context.Background(), testConfig(t), WithLogger(zerolog.Nop()), WithRegisterer(reg)); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestContainer_ExternalResourcesAreNotClosed(t *testing.T) {
	cfg := testConfig(t)

	db, err := bunstore.Open(cfg.Database)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	kv, err := cache.NewStore(cfg.Cache)
	if err != nil {
		t.Fatalf("cache store: %v", err)
	}
	defer kv.Close()

	c, err := NewContainer(context.Background(), cfg, WithLogger(zerolog.Nop()), WithDB(db), WithStore(kv))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		t.Errorf("database closed by container: %v", err)
	}
	if err := kv.Ping(context.Background()); err != nil {
		t.Errorf("store closed by container: %v", err)
	}
}

func TestContainer_DisabledCacheStillServesReads(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Cache.Driver = cache.DriverDisabled
	c := newTestContainer(t, cfg)

	user, err := c.Users().Save(ctx, &model.User{Username: "ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	for i := 0; i < 2; i++ {
		found, err := c.Users().FindByUsername(ctx, "ada")
		if err != nil {
			t.Fatalf("FindByUsername: %v", err)
		}
		if found.ID != user.ID {
			t.Fatalf("expected %s, got %s", user.ID, found.ID)
		}
	}

	_, err = c.Users().FindByUsername(ctx, "nobody")
	if !store.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
