package repositorycache

import (
	"context"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

// Likes passes straight through to the store. Like lists change too often
// to be worth caching; the target's counter is what readers see.
type Likes struct {
	store store.LikeStore
	opts  options
}

func NewLikes(primary store.LikeStore, opts ...Option) *Likes {
	return &Likes{store: primary, opts: applyOptions("likes", opts)}
}

func (r *Likes) FindByID(ctx context.Context, id uuid.UUID) (*model.Like, error) {
	return r.store.FindByID(ctx, id)
}

func (r *Likes) FindByUserAndTarget(ctx context.Context, userID, targetID uuid.UUID, targetType model.TargetType) (*model.Like, error) {
	return r.store.FindByUserAndTarget(ctx, userID, targetID, targetType)
}

func (r *Likes) FindByTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType, req pagination.Request) (pagination.Page[*model.Like], error) {
	return uncachedPage(ctx, req, func(ctx context.Context, req pagination.Request) (pagination.Page[*model.Like], error) {
		likes, total, err := r.store.FindByTarget(ctx, targetID, targetType, req)
		if err != nil {
			return pagination.Page[*model.Like]{}, err
		}
		return pagination.Build(likes, req, total), nil
	})
}

func (r *Likes) CountByTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType) (int64, error) {
	return r.store.CountByTarget(ctx, targetID, targetType)
}

func (r *Likes) Save(ctx context.Context, like *model.Like) (*model.Like, error) {
	saved, err := r.store.Save(ctx, like)
	if err != nil {
		return nil, err
	}
	r.opts.logger.Debug().Str("target", saved.TargetID.String()).Str("type", string(saved.TargetType)).Msg("like saved")
	return saved, nil
}

func (r *Likes) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, id)
}
