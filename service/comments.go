package service

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/google/uuid"
)

// Comments manages comment threads under posts.
type Comments struct {
	comments CommentRepository
	posts    PostCounters
	opts     options
}

func NewComments(comments CommentRepository, posts PostCounters, opts ...Option) *Comments {
	return &Comments{comments: comments, posts: posts, opts: applyOptions("comments", opts)}
}

// Add posts a top level comment.
func (s *Comments) Add(ctx context.Context, userID, postID uuid.UUID, text string) (*model.Comment, error) {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("post", postID)
	}

	comment, err := s.comments.Save(ctx, &model.Comment{
		Description: strings.TrimSpace(text),
		PostID:      postID,
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.posts.MarkNewComment(ctx, postID); err != nil {
		return nil, err
	}
	return comment, nil
}

// Reply answers parentID. The parent must belong to postID and must not
// be deleted.
func (s *Comments) Reply(ctx context.Context, userID, postID, parentID uuid.UUID, text string) (*model.Comment, error) {
	parent, err := s.comments.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.IsDeleted {
		return nil, ErrCommentDeleted
	}
	if parent.PostID != postID {
		return nil, ErrWrongPost
	}

	reply, err := s.comments.Save(ctx, &model.Comment{
		Description:     strings.TrimSpace(text),
		PostID:          postID,
		UserID:          userID,
		ParentCommentID: &parentID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.comments.IncrementReplyCount(ctx, parentID); err != nil {
		return nil, err
	}
	if err := s.posts.MarkNewComment(ctx, postID); err != nil {
		return nil, err
	}
	return reply, nil
}

// Edit replaces the text of a comment. Only the author may edit, and only
// within model.EditWindow of creation. Blank text leaves it unchanged.
func (s *Comments) Edit(ctx context.Context, userID, commentID uuid.UUID, text string) (*model.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotOwner
	}
	if comment.IsDeleted {
		return nil, ErrCommentDeleted
	}
	if !comment.Editable(userID, s.opts.now()) {
		return nil, ErrEditWindowClosed
	}

	text = strings.TrimSpace(text)
	if text == "" || text == comment.Description {
		return comment, nil
	}

	comment.Description = text
	comment.IsEdited = true
	return s.comments.Save(ctx, comment)
}

// Delete soft deletes a comment so its replies keep their place.
func (s *Comments) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}
	if comment.IsDeleted {
		return nil
	}

	comment.IsDeleted = true
	_, err = s.comments.Save(ctx, comment)
	return err
}
