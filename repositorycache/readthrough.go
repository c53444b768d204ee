package repositorycache

import (
	"context"
	"time"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/rs/zerolog"
)

// readThrough serves id from the entity cache, loading and caching it on a
// miss. Store errors are returned unchanged and nothing is cached for them.
func readThrough[T cache.Cacheable](ctx context.Context, entities *cache.EntityCache[T], id string, ttl time.Duration, logger zerolog.Logger, load func(context.Context) (T, error)) (T, error) {
	if !cacheBypassed(ctx) {
		if v, ok := entities.GetByID(ctx, id); ok {
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if !cacheBypassed(ctx) {
		remember(ctx, entities, id, v, ttl, logger)
	}
	return v, nil
}

// remember caches v by id. Failures only get logged.
func remember[T cache.Cacheable](ctx context.Context, entities *cache.EntityCache[T], id string, v T, ttl time.Duration, logger zerolog.Logger) {
	if err := entities.PutByID(ctx, id, v, ttl); err != nil {
		logger.Warn().Err(err).Str("id", id).Msg("skipped entity cache write")
	}
}

// cachedPage serves a versioned page for owner, querying the store and
// caching the result on a miss.
func cachedPage[T any](ctx context.Context, pages *cache.PaginationCache, owner string, req pagination.Request, prefix string, ttl time.Duration, load func(context.Context, pagination.Request) (pagination.Page[T], error)) (pagination.Page[T], error) {
	return servePage(ctx, req,
		func(req pagination.Request) (pagination.Page[T], bool) {
			return cache.GetPage[T](ctx, pages, owner, req, prefix)
		},
		func(req pagination.Request, page pagination.Page[T]) {
			cache.PutPage(ctx, pages, owner, req, prefix, page, ttl)
		},
		load)
}

// expiringPage is cachedPage for collections no write ever invalidates. It
// keeps no version counter, entries only leave through ttl.
func expiringPage[T any](ctx context.Context, pages *cache.PaginationCache, owner string, req pagination.Request, prefix string, ttl time.Duration, load func(context.Context, pagination.Request) (pagination.Page[T], error)) (pagination.Page[T], error) {
	return servePage(ctx, req,
		func(req pagination.Request) (pagination.Page[T], bool) {
			return cache.GetUnversionedPage[T](ctx, pages, owner, req, prefix)
		},
		func(req pagination.Request, page pagination.Page[T]) {
			cache.PutUnversionedPage(ctx, pages, owner, req, prefix, page, ttl)
		},
		load)
}

func servePage[T any](ctx context.Context, req pagination.Request, get func(pagination.Request) (pagination.Page[T], bool), put func(pagination.Request, pagination.Page[T]), load func(context.Context, pagination.Request) (pagination.Page[T], error)) (pagination.Page[T], error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return pagination.Page[T]{}, err
	}

	if cacheBypassed(ctx) {
		return load(ctx, req)
	}
	if page, ok := get(req); ok {
		return page, nil
	}

	page, err := load(ctx, req)
	if err != nil {
		return page, err
	}
	put(req, page)
	return page, nil
}

// uncachedPage validates req and loads the page from the store.
func uncachedPage[T any](ctx context.Context, req pagination.Request, load func(context.Context, pagination.Request) (pagination.Page[T], error)) (pagination.Page[T], error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return pagination.Page[T]{}, err
	}
	return load(ctx, req)
}

// bump invalidates every cached page of owner within prefix.
func bump(ctx context.Context, pages *cache.PaginationCache, owner, prefix string, logger zerolog.Logger) {
	if v := pages.IncrementVersion(ctx, owner, prefix); v == 0 {
		logger.Debug().Str("owner", owner).Str("collection", prefix).Msg("collection version not bumped")
	}
}
