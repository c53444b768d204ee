package bunstore

import (
	"context"
	"time"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var likeSortColumns = map[string]bool{
	"created_at": true,
	"like_type":  true,
}

// Likes implements store.LikeStore.
type Likes struct {
	db   *bun.DB
	repo repository.Repository[*model.Like]
	now  func() time.Time
}

var _ store.LikeStore = (*Likes)(nil)

func NewLikes(db *bun.DB) *Likes {
	return &Likes{
		db: db,
		repo: newRepository(db,
			func() *model.Like { return &model.Like{} },
			func(l *model.Like) uuid.UUID { return l.ID },
			func(l *model.Like, id uuid.UUID) { l.ID = id },
			"id",
		),
		now: time.Now,
	}
}

func (s *Likes) FindByID(ctx context.Context, id uuid.UUID) (*model.Like, error) {
	like, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapError(err, "like", "id", id.String())
	}
	return like, nil
}

func (s *Likes) FindByUserAndTarget(ctx context.Context, userID, targetID uuid.UUID, targetType model.TargetType) (*model.Like, error) {
	like, err := s.repo.Get(ctx, s.target(targetID, targetType), where("l.user_id = ?", userID))
	if err != nil {
		return nil, mapError(err, "like", "user_target", userID.String()+"/"+targetID.String())
	}
	return like, nil
}

func (s *Likes) FindByTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType, req pagination.Request) ([]*model.Like, int64, error) {
	likes, total, err := s.repo.List(ctx, s.target(targetID, targetType), paged("l", req, likeSortColumns))
	if err != nil {
		return nil, 0, mapError(err, "like", "page", targetID.String())
	}
	return likes, toInt64(total), nil
}

func (s *Likes) CountByTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType) (int64, error) {
	n, err := s.db.NewSelect().
		Model((*model.Like)(nil)).
		Where("l.target_id = ?", targetID).
		Where("l.target_type = ?", targetType).
		Count(ctx)
	if err != nil {
		return 0, mapError(err, "like", "target", targetID.String())
	}
	return toInt64(n), nil
}

func (s *Likes) Save(ctx context.Context, like *model.Like) (*model.Like, error) {
	if like == nil {
		return nil, store.ErrNilRecord
	}
	model.EnsureID(&like.ID)
	if like.LikeType == "" {
		like.LikeType = model.LikeLike
	}
	like.Touch(s.now(), like.UserID.String())
	if err := like.Validate(); err != nil {
		return nil, err
	}

	saved, err := upsert(ctx, s.db, s.repo, like)
	if err != nil {
		return nil, mapError(err, "like", "id", like.ID.String())
	}
	return saved, nil
}

func (s *Likes) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*model.Like)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return mapError(err, "like", "id", id.String())
	}
	return expectAffected(res, "like", id.String())
}

func (s *Likes) target(id uuid.UUID, targetType model.TargetType) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("l.target_id = ?", id).Where("l.target_type = ?", targetType)
	}
}
