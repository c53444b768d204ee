package service

import (
	"context"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

// Bookmarks saves posts for later and keeps the post's save counter in step.
type Bookmarks struct {
	saved SavedPostRepository
	posts PostCounters
	opts  options
}

func NewBookmarks(saved SavedPostRepository, posts PostCounters, opts ...Option) *Bookmarks {
	return &Bookmarks{saved: saved, posts: posts, opts: applyOptions("bookmarks", opts)}
}

func (s *Bookmarks) Save(ctx context.Context, userID, postID uuid.UUID, notes string) (*model.SavedPost, error) {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("post", postID)
	}

	if _, err := s.saved.FindByUserAndPost(ctx, userID, postID); err == nil {
		return nil, ErrAlreadySaved
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	saved, err := s.saved.Save(ctx, &model.SavedPost{UserID: userID, PostID: postID, Notes: notes})
	if err != nil {
		return nil, err
	}
	if err := s.posts.IncrementSaveCount(ctx, postID); err != nil {
		return nil, err
	}
	return saved, nil
}

// Remove deletes a bookmark owned by userID.
func (s *Bookmarks) Remove(ctx context.Context, userID, savedID uuid.UUID) error {
	saved, err := s.saved.FindByID(ctx, savedID)
	if err != nil {
		return err
	}
	if saved.UserID != userID {
		return ErrNotOwner
	}

	if err := s.posts.DecrementSaveCount(ctx, saved.PostID); err != nil {
		return err
	}
	return s.saved.Delete(ctx, savedID)
}
