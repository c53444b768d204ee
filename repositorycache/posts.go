package repositorycache

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

// Posts caches posts by id and versioned pages of each author's posts.
//
// Search results are cached under a digest of the filter and are never
// invalidated by writes. They can be stale for up to TTLPolicy.PostSearch.
type Posts struct {
	store    store.PostStore
	entities *cache.EntityCache[*model.Post]
	pages    *cache.PaginationCache
	opts     options
}

func NewPosts(primary store.PostStore, entities *cache.EntityCache[*model.Post], pages *cache.PaginationCache, opts ...Option) *Posts {
	return &Posts{
		store:    primary,
		entities: entities,
		pages:    pages,
		opts:     applyOptions("posts", opts),
	}
}

func (r *Posts) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return readThrough(ctx, r.entities, id.String(), r.opts.ttl.PostByID, r.opts.logger,
		func(ctx context.Context) (*model.Post, error) {
			return r.store.FindByID(ctx, id)
		})
}

func (r *Posts) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.Exists(ctx, id)
}

// FindAll lists every post. Admin listings are not cached.
func (r *Posts) FindAll(ctx context.Context, req pagination.Request) (pagination.Page[model.PostView], error) {
	return uncachedPage(ctx, req, func(ctx context.Context, req pagination.Request) (pagination.Page[model.PostView], error) {
		posts, total, err := r.store.FindAll(ctx, req)
		return viewPosts(posts, req, total, err)
	})
}

func (r *Posts) FindByAuthor(ctx context.Context, authorID uuid.UUID, req pagination.Request) (pagination.Page[model.PostView], error) {
	return cachedPage(ctx, r.pages, authorID.String(), req, PostsByAuthor, r.opts.ttl.PostsByAuthor,
		func(ctx context.Context, req pagination.Request) (pagination.Page[model.PostView], error) {
			posts, total, err := r.store.FindByAuthor(ctx, authorID, req)
			return viewPosts(posts, req, total, err)
		})
}

func (r *Posts) Search(ctx context.Context, filter store.PostSearch, req pagination.Request) (pagination.Page[model.PostView], error) {
	return expiringPage(ctx, r.pages, r.searchOwner(filter), req, PostSearch, r.opts.ttl.PostSearch,
		func(ctx context.Context, req pagination.Request) (pagination.Page[model.PostView], error) {
			posts, total, err := r.store.Search(ctx, filter, req)
			return viewPosts(posts, req, total, err)
		})
}

// Recommend depends on the caller's exclusions and is not cached.
func (r *Posts) Recommend(ctx context.Context, tags []string, exclude []uuid.UUID, req pagination.Request) (pagination.Page[model.PostView], error) {
	return uncachedPage(ctx, req, func(ctx context.Context, req pagination.Request) (pagination.Page[model.PostView], error) {
		posts, total, err := r.store.Recommend(ctx, tags, exclude, req)
		return viewPosts(posts, req, total, err)
	})
}

// Save writes the post, refreshes its entry and invalidates the author's pages.
func (r *Posts) Save(ctx context.Context, post *model.Post) (*model.Post, error) {
	saved, err := r.store.Save(ctx, post)
	if err != nil {
		return nil, err
	}
	remember(ctx, r.entities, saved.ID.String(), saved, r.opts.ttl.PostOnSave, r.opts.logger)
	bump(ctx, r.pages, saved.AuthorID.String(), PostsByAuthor, r.opts.logger)
	return saved, nil
}

func (r *Posts) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := r.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.entities.DeleteByID(ctx, id.String())
	bump(ctx, r.pages, post.AuthorID.String(), PostsByAuthor, r.opts.logger)
	return nil
}

func (r *Posts) IncrementLikeCount(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.AdjustLikeCount(ctx, id, 1) })
}

func (r *Posts) DecrementLikeCount(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.AdjustLikeCount(ctx, id, -1) })
}

func (r *Posts) IncrementSaveCount(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.AdjustSaveCount(ctx, id, 1) })
}

func (r *Posts) DecrementSaveCount(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.AdjustSaveCount(ctx, id, -1) })
}

// MarkNewComment records a comment on the post.
func (r *Posts) MarkNewComment(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.MarkNewComment(ctx, id) })
}

// counter applies a store side counter update and drops the cached post so
// the next read picks up the new value. Author pages keep stale counters
// until they expire.
func (r *Posts) counter(ctx context.Context, id uuid.UUID, update func() error) error {
	if err := update(); err != nil {
		return err
	}
	r.entities.DeleteByID(ctx, id.String())
	return nil
}

func (r *Posts) searchOwner(filter store.PostSearch) string {
	tags := make([]string, 0, len(filter.Tags))
	for _, tag := range filter.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return r.opts.keys.Digest("search", strings.ToLower(strings.TrimSpace(filter.Title)), tags)
}

func viewPosts(posts []*model.Post, req pagination.Request, total int64, err error) (pagination.Page[model.PostView], error) {
	if err != nil {
		return pagination.Page[model.PostView]{}, err
	}
	return pagination.Map(pagination.Build(posts, req, total), (*model.Post).View), nil
}
