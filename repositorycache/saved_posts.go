package repositorycache

import (
	"context"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

// SavedPosts caches versioned pages of each user's bookmarks. Single
// bookmarks are read rarely and are not cached.
type SavedPosts struct {
	store store.SavedPostStore
	pages *cache.PaginationCache
	opts  options
}

func NewSavedPosts(primary store.SavedPostStore, pages *cache.PaginationCache, opts ...Option) *SavedPosts {
	return &SavedPosts{store: primary, pages: pages, opts: applyOptions("saved_posts", opts)}
}

func (r *SavedPosts) FindByID(ctx context.Context, id uuid.UUID) (*model.SavedPost, error) {
	return r.store.FindByID(ctx, id)
}

func (r *SavedPosts) FindByUserAndPost(ctx context.Context, userID, postID uuid.UUID) (*model.SavedPost, error) {
	return r.store.FindByUserAndPost(ctx, userID, postID)
}

func (r *SavedPosts) FindByUser(ctx context.Context, userID uuid.UUID, req pagination.Request) (pagination.Page[model.SavedPostView], error) {
	return cachedPage(ctx, r.pages, userID.String(), req, SavedPostsByUser, r.opts.ttl.SavedPostsByUser,
		func(ctx context.Context, req pagination.Request) (pagination.Page[model.SavedPostView], error) {
			saved, total, err := r.store.FindByUser(ctx, userID, req)
			if err != nil {
				return pagination.Page[model.SavedPostView]{}, err
			}
			return pagination.Map(pagination.Build(saved, req, total), (*model.SavedPost).View), nil
		})
}

func (r *SavedPosts) Save(ctx context.Context, saved *model.SavedPost) (*model.SavedPost, error) {
	out, err := r.store.Save(ctx, saved)
	if err != nil {
		return nil, err
	}
	bump(ctx, r.pages, out.UserID.String(), SavedPostsByUser, r.opts.logger)
	return out, nil
}

func (r *SavedPosts) Delete(ctx context.Context, id uuid.UUID) error {
	saved, err := r.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	bump(ctx, r.pages, saved.UserID.String(), SavedPostsByUser, r.opts.logger)
	return nil
}
