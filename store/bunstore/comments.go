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

var commentSortColumns = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"reply_count":      true,
	"stats_like_count": true,
}

var commentCounterColumns = []string{"reply_count", "stats_like_count", "stats_report_count"}

// Comments implements store.CommentStore.
type Comments struct {
	db   *bun.DB
	repo repository.Repository[*model.Comment]
	now  func() time.Time
}

var _ store.CommentStore = (*Comments)(nil)

func NewComments(db *bun.DB) *Comments {
	return &Comments{
		db: db,
		repo: newRepository(db,
			func() *model.Comment { return &model.Comment{} },
			func(c *model.Comment) uuid.UUID { return c.ID },
			func(c *model.Comment, id uuid.UUID) { c.ID = id },
			"id",
		),
		now: time.Now,
	}
}

func (s *Comments) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	comment, err := s.repo.GetByID(ctx, id.String(), relation("User"))
	if err != nil {
		return nil, mapError(err, "comment", "id", id.String())
	}
	return comment, nil
}

func (s *Comments) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.db.NewSelect().Model((*model.Comment)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return false, mapError(err, "comment", "id", id.String())
	}
	return ok, nil
}

func (s *Comments) FindAll(ctx context.Context, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list(ctx, "all", req)
}

// FindByPost returns the top level comments of a post.
func (s *Comments) FindByPost(ctx context.Context, postID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list(ctx, postID.String(), req,
		where("c.post_id = ?", postID),
		where("c.parent_comment_id IS NULL"),
	)
}

func (s *Comments) FindByUser(ctx context.Context, userID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list(ctx, userID.String(), req, where("c.user_id = ?", userID))
}

func (s *Comments) FindReplies(ctx context.Context, parentID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list(ctx, parentID.String(), req, where("c.parent_comment_id = ?", parentID))
}

// FindAllReplies returns every direct reply, oldest first.
func (s *Comments) FindAllReplies(ctx context.Context, parentID uuid.UUID) ([]*model.Comment, error) {
	replies, _, err := s.repo.List(ctx,
		where("c.parent_comment_id = ?", parentID),
		relation("User"),
		func(q *bun.SelectQuery) *bun.SelectQuery { return q.OrderExpr("c.created_at ASC") },
	)
	if err != nil {
		return nil, mapError(err, "comment", "parent", parentID.String())
	}
	return replies, nil
}

// Save inserts or rewrites the comment. Reply and like counters are left
// untouched on update.
func (s *Comments) Save(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	if comment == nil {
		return nil, store.ErrNilRecord
	}
	model.EnsureID(&comment.ID)
	comment.Touch(s.now(), comment.UserID.String())
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	if _, err := upsert(ctx, s.db, s.repo, comment, commentCounterColumns...); err != nil {
		return nil, mapError(err, "comment", "id", comment.ID.String())
	}
	// the row holds columns the update skipped
	return s.FindByID(ctx, comment.ID)
}

func (s *Comments) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*model.Comment)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return mapError(err, "comment", "id", id.String())
	}
	return expectAffected(res, "comment", id.String())
}

func (s *Comments) IncrementReplyCount(ctx context.Context, id uuid.UUID) error {
	return adjustCounter(ctx, s.db, (*model.Comment)(nil), "comment", "reply_count", id, 1)
}

func (s *Comments) AdjustLikeCount(ctx context.Context, id uuid.UUID, delta int64) error {
	return adjustCounter(ctx, s.db, (*model.Comment)(nil), "comment", "stats_like_count", id, delta)
}

func (s *Comments) list(ctx context.Context, scope string, req pagination.Request, criteria ...repository.SelectCriteria) ([]*model.Comment, int64, error) {
	criteria = append(criteria, relation("User"), paged("c", req, commentSortColumns))
	comments, total, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, 0, mapError(err, "comment", "page", scope)
	}
	return comments, toInt64(total), nil
}
