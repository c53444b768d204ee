// Package service runs the multi step mutations of the blog: likes,
// bookmarks and comment threads. Each operation writes the primary record
// first and then adjusts the counters on its target through the cached
// repositories, so the cache invalidation rules apply on every path.
package service

import (
	"context"
	"time"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyLiked = errors.New("target already liked by user", errors.CategoryConflict).
			WithTextCode("ALREADY_LIKED")
	ErrAlreadySaved = errors.New("post already saved by user", errors.CategoryConflict).
			WithTextCode("ALREADY_SAVED")
	ErrNotOwner = errors.New("record belongs to another user", errors.CategoryAuthz).
			WithTextCode("NOT_OWNER")
	ErrEditWindowClosed = errors.New("comment can no longer be edited", errors.CategoryConflict).
				WithTextCode("EDIT_WINDOW_CLOSED")
	ErrCommentDeleted = errors.New("comment was deleted", errors.CategoryConflict).
				WithTextCode("COMMENT_DELETED")
	ErrWrongPost = errors.New("parent comment belongs to another post", errors.CategoryBadInput).
			WithTextCode("WRONG_POST")
	ErrUnknownTarget = errors.New("unknown like target type", errors.CategoryBadInput).
				WithTextCode("UNKNOWN_TARGET")
)

type PostCounters interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementLikeCount(ctx context.Context, id uuid.UUID) error
	DecrementLikeCount(ctx context.Context, id uuid.UUID) error
	IncrementSaveCount(ctx context.Context, id uuid.UUID) error
	DecrementSaveCount(ctx context.Context, id uuid.UUID) error
	MarkNewComment(ctx context.Context, id uuid.UUID) error
}

type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, comment *model.Comment) (*model.Comment, error)
	IncrementReplyCount(ctx context.Context, id uuid.UUID) error
	IncrementLikeCount(ctx context.Context, id uuid.UUID) error
	DecrementLikeCount(ctx context.Context, id uuid.UUID) error
}

type LikeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Like, error)
	FindByUserAndTarget(ctx context.Context, userID, targetID uuid.UUID, targetType model.TargetType) (*model.Like, error)
	Save(ctx context.Context, like *model.Like) (*model.Like, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SavedPostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.SavedPost, error)
	FindByUserAndPost(ctx context.Context, userID, postID uuid.UUID) (*model.SavedPost, error)
	Save(ctx context.Context, saved *model.SavedPost) (*model.SavedPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type options struct {
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now, used for the comment edit window.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(component string, opts []Option) options {
	o := options{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.logger = o.logger.With().Str("component", component).Logger()
	return o
}

// notFound reports a missing parent record as a not-found error.
func notFound(entity string, id uuid.UUID) error {
	return errors.New(entity+" not found", errors.CategoryNotFound).
		WithTextCode("NOT_FOUND").
		WithMetadata(map[string]any{"entity": entity, "id": id.String()})
}
