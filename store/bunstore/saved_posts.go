package bunstore

import (
	"context"
	"time"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var savedPostSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// SavedPosts implements store.SavedPostStore.
type SavedPosts struct {
	db   *bun.DB
	repo repository.Repository[*model.SavedPost]
	now  func() time.Time
}

var _ store.SavedPostStore = (*SavedPosts)(nil)

func NewSavedPosts(db *bun.DB) *SavedPosts {
	return &SavedPosts{
		db: db,
		repo: newRepository(db,
			func() *model.SavedPost { return &model.SavedPost{} },
			func(sp *model.SavedPost) uuid.UUID { return sp.ID },
			func(sp *model.SavedPost, id uuid.UUID) { sp.ID = id },
			"id",
		),
		now: time.Now,
	}
}

func (s *SavedPosts) FindByID(ctx context.Context, id uuid.UUID) (*model.SavedPost, error) {
	saved, err := s.repo.GetByID(ctx, id.String(), relation("Post"))
	if err != nil {
		return nil, mapError(err, "saved_post", "id", id.String())
	}
	return saved, nil
}

func (s *SavedPosts) FindByUserAndPost(ctx context.Context, userID, postID uuid.UUID) (*model.SavedPost, error) {
	saved, err := s.repo.Get(ctx,
		where("sp.user_id = ?", userID),
		where("sp.post_id = ?", postID),
	)
	if err != nil {
		return nil, mapError(err, "saved_post", "user_post", userID.String()+"/"+postID.String())
	}
	return saved, nil
}

// FindByUser returns the bookmarks of a user with their posts loaded.
func (s *SavedPosts) FindByUser(ctx context.Context, userID uuid.UUID, req pagination.Request) ([]*model.SavedPost, int64, error) {
	saved, total, err := s.repo.List(ctx,
		where("sp.user_id = ?", userID),
		relation("Post"),
		paged("sp", req, savedPostSortColumns),
	)
	if err != nil {
		return nil, 0, mapError(err, "saved_post", "page", userID.String())
	}
	return saved, toInt64(total), nil
}

func (s *SavedPosts) Save(ctx context.Context, saved *model.SavedPost) (*model.SavedPost, error) {
	if saved == nil {
		return nil, store.ErrNilRecord
	}
	if saved.UserID == uuid.Nil || saved.PostID == uuid.Nil {
		return nil, errors.New("saved post needs a user and a post", errors.CategoryValidation).
			WithTextCode("SAVED_POST_INVALID")
	}
	model.EnsureID(&saved.ID)
	saved.Touch(s.now(), saved.UserID.String())

	out, err := upsert(ctx, s.db, s.repo, saved)
	if err != nil {
		return nil, mapError(err, "saved_post", "id", saved.ID.String())
	}
	return out, nil
}

func (s *SavedPosts) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*model.SavedPost)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return mapError(err, "saved_post", "id", id.String())
	}
	return expectAffected(res, "saved_post", id.String())
}
