package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-errors"
	"github.com/rs/zerolog"
)

// ErrVersionUnavailable is reported when the version counter can be neither
// read nor initialized.
var ErrVersionUnavailable = errors.New("collection version unavailable", errors.CategoryExternal).
	WithTextCode("CACHE_VERSION_UNAVAILABLE")

// PaginationCache caches whole pages per owner. Every page key embeds the
// owner's current version, so bumping the version orphans all previously
// cached pages without touching them. Orphans expire through their ttl.
type PaginationCache struct {
	store  Store
	opts   options
	logger zerolog.Logger
}

// NewPaginationCache returns a pagination cache over store.
func NewPaginationCache(store Store, opts ...Option) *PaginationCache {
	o := applyOptions(opts)
	return &PaginationCache{
		store:  store,
		opts:   o,
		logger: o.logger.With().Str("cache", "page").Logger(),
	}
}

// VersionKey returns the counter key for an owner collection.
func VersionKey(ownerID, prefix string) string {
	return fmt.Sprintf("%s%s:version", prefix, ownerID)
}

// PageKey composes a page key for a known version.
func PageKey(ownerID string, req pagination.Request, prefix string, version int64) string {
	req = req.Normalize()
	return fmt.Sprintf("%s%s:v%d:page:%d:size:%d:sortBy:%s:isNewest:%t",
		prefix, ownerID, version, req.Page, req.Size, req.SortBy, req.IsNewest)
}

// GetVersion returns the current version for an owner collection,
// initializing it to 1 when absent.
func (c *PaginationCache) GetVersion(ctx context.Context, ownerID, prefix string) (int64, error) {
	key := VersionKey(ownerID, prefix)

	if v, ok, err := c.readVersion(ctx, key); err != nil || ok {
		return v, err
	}

	if _, err := c.store.SetIfAbsent(ctx, key, "1", 0); err != nil {
		return 0, err
	}

	// lost the race or won it, either way the key now holds the truth
	v, ok, err := c.readVersion(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrVersionUnavailable
	}
	return v, nil
}

// IncrementVersion bumps the owner collection version and returns the new
// value. A missing counter is created at 1 first so the first bump yields 2.
// Failures are logged and reported as 0.
func (c *PaginationCache) IncrementVersion(ctx context.Context, ownerID, prefix string) int64 {
	key := VersionKey(ownerID, prefix)

	if _, err := c.store.SetIfAbsent(ctx, key, "1", 0); err != nil {
		c.fail("version_init", prefix, key, err)
		return 0
	}

	v, err := c.store.Increment(ctx, key)
	if err != nil {
		c.fail("version_bump", prefix, key, err)
		return 0
	}

	c.opts.recorder.VersionBumped(prefix)
	c.logger.Debug().Str("key", key).Int64("version", v).Msg("collection version bumped")
	return v
}

// UnversionedPageKey composes a page key for a collection without a version
// counter. It never collides with PageKey, whose versions start at 1.
func UnversionedPageKey(ownerID string, req pagination.Request, prefix string) string {
	return PageKey(ownerID, req, prefix, 0)
}

// BuildKey resolves the current version and composes the page key.
func (c *PaginationCache) BuildKey(ctx context.Context, ownerID string, req pagination.Request, prefix string) (string, error) {
	version, err := c.GetVersion(ctx, ownerID, prefix)
	if err != nil {
		return "", err
	}
	return PageKey(ownerID, req, prefix, version), nil
}

// Put stores data under the current page key. A ttl <= 0 uses the default ttl.
func (c *PaginationCache) Put(ctx context.Context, ownerID string, req pagination.Request, prefix string, data any, ttl time.Duration) {
	if isNil(data) {
		return
	}

	key, err := c.BuildKey(ctx, ownerID, req, prefix)
	if err != nil {
		c.fail("build_key", prefix, VersionKey(ownerID, prefix), err)
		return
	}
	c.write(ctx, key, prefix, data, ttl)
}

// Get decodes the cached page into dst, which must be a pointer. It reports
// false on a miss, an unreadable version, or a malformed payload.
func (c *PaginationCache) Get(ctx context.Context, ownerID string, req pagination.Request, prefix string, dst any) bool {
	key, err := c.BuildKey(ctx, ownerID, req, prefix)
	if err != nil {
		c.fail("build_key", prefix, VersionKey(ownerID, prefix), err)
		return false
	}
	return c.read(ctx, key, prefix, dst)
}

// PutUnversioned stores data for a collection nothing ever invalidates, such
// as search results. The key carries no version so no counter is created and
// entries leave the store through their ttl alone.
func (c *PaginationCache) PutUnversioned(ctx context.Context, ownerID string, req pagination.Request, prefix string, data any, ttl time.Duration) {
	if isNil(data) {
		return
	}
	c.write(ctx, UnversionedPageKey(ownerID, req, prefix), prefix, data, ttl)
}

// GetUnversioned is the read side of PutUnversioned.
func (c *PaginationCache) GetUnversioned(ctx context.Context, ownerID string, req pagination.Request, prefix string, dst any) bool {
	return c.read(ctx, UnversionedPageKey(ownerID, req, prefix), prefix, dst)
}

func (c *PaginationCache) write(ctx context.Context, key, prefix string, data any, ttl time.Duration) {
	payload, err := c.opts.codec.Marshal(data)
	if err != nil {
		c.fail("encode", prefix, key, err)
		return
	}

	if err := c.store.Set(ctx, key, string(payload), c.opts.ttl(ttl)); err != nil {
		c.fail("put", prefix, key, err)
		return
	}
	c.opts.recorder.Observe("page", prefix, ResultWrite)
}

func (c *PaginationCache) read(ctx context.Context, key, prefix string, dst any) bool {
	payload, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.fail("get", prefix, key, err)
		return false
	}
	if !ok {
		c.opts.recorder.Observe("page", prefix, ResultMiss)
		return false
	}

	if err := c.opts.codec.Unmarshal([]byte(payload), dst); err != nil {
		c.fail("decode", prefix, key, err)
		return false
	}

	c.opts.recorder.Observe("page", prefix, ResultHit)
	c.logger.Debug().Str("key", key).Msg("page cache hit")
	return true
}

// GetPage is the typed form of Get. Pages without content count as a miss.
func GetPage[T any](ctx context.Context, c *PaginationCache, ownerID string, req pagination.Request, prefix string) (pagination.Page[T], bool) {
	var page pagination.Page[T]
	if !c.Get(ctx, ownerID, req, prefix, &page) {
		return pagination.Page[T]{}, false
	}
	if page.Empty() {
		return pagination.Page[T]{}, false
	}
	return page, true
}

// PutPage stores a typed page. Empty pages are not cached.
func PutPage[T any](ctx context.Context, c *PaginationCache, ownerID string, req pagination.Request, prefix string, page pagination.Page[T], ttl time.Duration) {
	if page.Empty() {
		return
	}
	c.Put(ctx, ownerID, req, prefix, page, ttl)
}

// GetUnversionedPage is GetPage for collections cached with PutUnversionedPage.
func GetUnversionedPage[T any](ctx context.Context, c *PaginationCache, ownerID string, req pagination.Request, prefix string) (pagination.Page[T], bool) {
	var page pagination.Page[T]
	if !c.GetUnversioned(ctx, ownerID, req, prefix, &page) {
		return pagination.Page[T]{}, false
	}
	if page.Empty() {
		return pagination.Page[T]{}, false
	}
	return page, true
}

// PutUnversionedPage stores a typed page without a version counter.
func PutUnversionedPage[T any](ctx context.Context, c *PaginationCache, ownerID string, req pagination.Request, prefix string, page pagination.Page[T], ttl time.Duration) {
	if page.Empty() {
		return
	}
	c.PutUnversioned(ctx, ownerID, req, prefix, page, ttl)
}

func (c *PaginationCache) readVersion(ctx context.Context, key string) (int64, bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CategoryInternal, "malformed version counter").
			WithMetadata(map[string]any{"key": key, "value": raw})
	}
	return v, true, nil
}

func (c *PaginationCache) fail(op, prefix, key string, err error) {
	c.opts.recorder.Observe("page", prefix, ResultError)
	if errors.Is(err, ErrVersionUnavailable) {
		c.logger.Debug().Err(err).Str("op", op).Str("key", key).Msg("page cache skipped")
		return
	}
	c.logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("page cache operation failed")
}
