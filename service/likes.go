package service

import (
	"context"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

// Likes records reactions on posts and comments and keeps the target's
// like counter in step.
type Likes struct {
	likes    LikeRepository
	posts    PostCounters
	comments CommentRepository
	opts     options
}

func NewLikes(likes LikeRepository, posts PostCounters, comments CommentRepository, opts ...Option) *Likes {
	return &Likes{likes: likes, posts: posts, comments: comments, opts: applyOptions("likes", opts)}
}

// Like adds a reaction of userID to the target. A user can react once per
// target.
func (s *Likes) Like(ctx context.Context, userID, targetID uuid.UUID, targetType model.TargetType, likeType model.LikeType) (*model.Like, error) {
	if err := s.targetExists(ctx, targetID, targetType); err != nil {
		return nil, err
	}

	if _, err := s.likes.FindByUserAndTarget(ctx, userID, targetID, targetType); err == nil {
		return nil, ErrAlreadyLiked
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	like, err := s.likes.Save(ctx, &model.Like{
		UserID:     userID,
		TargetID:   targetID,
		TargetType: targetType,
		LikeType:   likeType,
	})
	if err != nil {
		return nil, err
	}

	if err := s.adjust(ctx, like, 1); err != nil {
		return nil, err
	}
	s.opts.logger.Debug().Str("target", targetID.String()).Str("type", string(targetType)).Msg("liked")
	return like, nil
}

// Unlike removes a reaction. Only its owner may remove it.
func (s *Likes) Unlike(ctx context.Context, userID, likeID uuid.UUID) error {
	like, err := s.likes.FindByID(ctx, likeID)
	if err != nil {
		return err
	}
	if like.UserID != userID {
		return ErrNotOwner
	}

	if err := s.adjust(ctx, like, -1); err != nil {
		return err
	}
	return s.likes.Delete(ctx, likeID)
}

func (s *Likes) targetExists(ctx context.Context, id uuid.UUID, targetType model.TargetType) error {
	var (
		ok  bool
		err error
	)
	switch targetType {
	case model.TargetPost:
		ok, err = s.posts.Exists(ctx, id)
	case model.TargetComment:
		ok, err = s.comments.Exists(ctx, id)
	default:
		return ErrUnknownTarget
	}
	if err != nil {
		return err
	}
	if !ok {
		return notFound(string(targetType), id)
	}
	return nil
}

func (s *Likes) adjust(ctx context.Context, like *model.Like, delta int) error {
	switch like.TargetType {
	case model.TargetPost:
		if delta > 0 {
			return s.posts.IncrementLikeCount(ctx, like.TargetID)
		}
		return s.posts.DecrementLikeCount(ctx, like.TargetID)
	case model.TargetComment:
		if delta > 0 {
			return s.comments.IncrementLikeCount(ctx, like.TargetID)
		}
		return s.comments.DecrementLikeCount(ctx, like.TargetID)
	}
	return ErrUnknownTarget
}
