package repositorycache

import (
	"context"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

// Comments caches comments by id, versioned pages of each post's top level
// comments and versioned pages of each comment's replies.
type Comments struct {
	store    store.CommentStore
	entities *cache.EntityCache[*model.Comment]
	pages    *cache.PaginationCache
	opts     options
}

func NewComments(primary store.CommentStore, entities *cache.EntityCache[*model.Comment], pages *cache.PaginationCache, opts ...Option) *Comments {
	return &Comments{store: primary, entities: entities, pages: pages, opts: applyOptions("comments", opts)}
}

func (r *Comments) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	return readThrough(ctx, r.entities, id.String(), r.opts.ttl.CommentByID, r.opts.logger,
		func(ctx context.Context) (*model.Comment, error) {
			return r.store.FindByID(ctx, id)
		})
}

func (r *Comments) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *Comments) FindAll(ctx context.Context, req pagination.Request) (pagination.Page[model.CommentView], error) {
	return uncachedPage(ctx, req, func(ctx context.Context, req pagination.Request) (pagination.Page[model.CommentView], error) {
		comments, total, err := r.store.FindAll(ctx, req)
		return viewComments(comments, req, total, err)
	})
}

func (r *Comments) FindByPost(ctx context.Context, postID uuid.UUID, req pagination.Request) (pagination.Page[model.CommentView], error) {
	return cachedPage(ctx, r.pages, postID.String(), req, CommentsByPost, r.opts.ttl.CommentsByPost,
		func(ctx context.Context, req pagination.Request) (pagination.Page[model.CommentView], error) {
			comments, total, err := r.store.FindByPost(ctx, postID, req)
			return viewComments(comments, req, total, err)
		})
}

func (r *Comments) FindByUser(ctx context.Context, userID uuid.UUID, req pagination.Request) (pagination.Page[model.CommentView], error) {
	return uncachedPage(ctx, req, func(ctx context.Context, req pagination.Request) (pagination.Page[model.CommentView], error) {
		comments, total, err := r.store.FindByUser(ctx, userID, req)
		return viewComments(comments, req, total, err)
	})
}

func (r *Comments) FindReplies(ctx context.Context, parentID uuid.UUID, req pagination.Request) (pagination.Page[model.CommentView], error) {
	return cachedPage(ctx, r.pages, parentID.String(), req, RepliesByComment, r.opts.ttl.RepliesByComment,
		func(ctx context.Context, req pagination.Request) (pagination.Page[model.CommentView], error) {
			comments, total, err := r.store.FindReplies(ctx, parentID, req)
			return viewComments(comments, req, total, err)
		})
}

func (r *Comments) FindAllReplies(ctx context.Context, parentID uuid.UUID) ([]model.CommentView, error) {
	replies, err := r.store.FindAllReplies(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]model.CommentView, 0, len(replies))
	for _, reply := range replies {
		out = append(out, reply.View())
	}
	return out, nil
}

// Save creates or edits a comment. Edits drop the cached entry. Both
// invalidate the post's comment pages and, for replies, the parent's
// reply pages.
func (r *Comments) Save(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	if comment == nil {
		return nil, store.ErrNilRecord
	}
	editing := comment.ID != uuid.Nil

	saved, err := r.store.Save(ctx, comment)
	if err != nil {
		return nil, err
	}
	if editing {
		r.entities.DeleteByID(ctx, saved.ID.String())
	}
	r.invalidateThread(ctx, saved)
	return saved, nil
}

func (r *Comments) Delete(ctx context.Context, id uuid.UUID) error {
	comment, err := r.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.entities.DeleteByID(ctx, id.String())
	r.invalidateThread(ctx, comment)
	return nil
}

func (r *Comments) IncrementReplyCount(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.IncrementReplyCount(ctx, id) })
}

func (r *Comments) IncrementLikeCount(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.AdjustLikeCount(ctx, id, 1) })
}

func (r *Comments) DecrementLikeCount(ctx context.Context, id uuid.UUID) error {
	return r.counter(ctx, id, func() error { return r.store.AdjustLikeCount(ctx, id, -1) })
}

func (r *Comments) counter(ctx context.Context, id uuid.UUID, update func() error) error {
	if err := update(); err != nil {
		return err
	}
	r.entities.DeleteByID(ctx, id.String())
	return nil
}

func (r *Comments) invalidateThread(ctx context.Context, comment *model.Comment) {
	bump(ctx, r.pages, comment.PostID.String(), CommentsByPost, r.opts.logger)
	if comment.IsReply() {
		bump(ctx, r.pages, comment.ParentCommentID.String(), RepliesByComment, r.opts.logger)
	}
}

func viewComments(comments []*model.Comment, req pagination.Request, total int64, err error) (pagination.Page[model.CommentView], error) {
	if err != nil {
		return pagination.Page[model.CommentView]{}, err
	}
	return pagination.Map(pagination.Build(comments, req, total), (*model.Comment).View), nil
}
