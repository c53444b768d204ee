// Package store defines the primary store contracts the cached repositories
// read through. The primary store is the source of truth: every error it
// returns is propagated unchanged by the caching layer.
package store

import (
	"context"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ErrNotFound is the category shared by all lookups that found nothing.
var ErrNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithTextCode("NOT_FOUND")

// NotFound builds a not-found error for an entity and lookup value.
func NotFound(entity, by, value string) error {
	return errors.Wrap(ErrNotFound, errors.CategoryNotFound, entity+" not found").
		WithMetadata(map[string]any{"entity": entity, by: value})
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err) || errors.Is(err, ErrNotFound)
}

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, value string) (*model.User, error)
	FindByProviderID(ctx context.Context, providerID string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByProviderID(ctx context.Context, providerID string) (bool, error)
	FindAll(ctx context.Context, req pagination.Request) ([]*model.User, int64, error)
	Save(ctx context.Context, user *model.User) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostSearch filters a post search. Empty fields do not constrain.
type PostSearch struct {
	Title string
	Tags  []string
}

type PostStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FindAll(ctx context.Context, req pagination.Request) ([]*model.Post, int64, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID, req pagination.Request) ([]*model.Post, int64, error)
	Search(ctx context.Context, filter PostSearch, req pagination.Request) ([]*model.Post, int64, error)
	Recommend(ctx context.Context, tags []string, exclude []uuid.UUID, req pagination.Request) ([]*model.Post, int64, error)
	Save(ctx context.Context, post *model.Post) (*model.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Counter updates are applied atomically in the store and never go below zero.
	AdjustLikeCount(ctx context.Context, id uuid.UUID, delta int64) error
	AdjustSaveCount(ctx context.Context, id uuid.UUID, delta int64) error
	MarkNewComment(ctx context.Context, id uuid.UUID) error
}

type CommentStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FindAll(ctx context.Context, req pagination.Request) ([]*model.Comment, int64, error)
	FindByPost(ctx context.Context, postID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error)
	FindByUser(ctx context.Context, userID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error)
	FindReplies(ctx context.Context, parentID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error)
	FindAllReplies(ctx context.Context, parentID uuid.UUID) ([]*model.Comment, error)
	Save(ctx context.Context, comment *model.Comment) (*model.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	IncrementReplyCount(ctx context.Context, id uuid.UUID) error
	AdjustLikeCount(ctx context.Context, id uuid.UUID, delta int64) error
}

type SavedPostStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.SavedPost, error)
	FindByUserAndPost(ctx context.Context, userID, postID uuid.UUID) (*model.SavedPost, error)
	FindByUser(ctx context.Context, userID uuid.UUID, req pagination.Request) ([]*model.SavedPost, int64, error)
	Save(ctx context.Context, saved *model.SavedPost) (*model.SavedPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LikeStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Like, error)
	FindByUserAndTarget(ctx context.Context, userID, targetID uuid.UUID, targetType model.TargetType) (*model.Like, error)
	FindByTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType, req pagination.Request) ([]*model.Like, int64, error)
	CountByTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType) (int64, error)
	Save(ctx context.Context, like *model.Like) (*model.Like, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrNilRecord is returned when a nil entity is handed to Save.
var ErrNilRecord = errors.New("record is nil", errors.CategoryBadInput).
	WithTextCode("NIL_RECORD")
