package bunstore

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecommendWindow limits recommendations to recent posts.
const RecommendWindow = 90 * 24 * time.Hour

var postSortColumns = map[string]bool{
	"created_at":          true,
	"updated_at":          true,
	"title":               true,
	"stats_like_count":    true,
	"stats_comment_count": true,
	"stats_save_count":    true,
}

// counter columns are only written by the Adjust* methods.
var postCounterColumns = []string{"stats_like_count", "stats_comment_count", "stats_save_count", "has_comments"}

// Posts implements store.PostStore.
type Posts struct {
	db   *bun.DB
	repo repository.Repository[*model.Post]
	now  func() time.Time
}

var _ store.PostStore = (*Posts)(nil)

func NewPosts(db *bun.DB) *Posts {
	return &Posts{
		db: db,
		repo: newRepository(db,
			func() *model.Post { return &model.Post{} },
			func(p *model.Post) uuid.UUID { return p.ID },
			func(p *model.Post, id uuid.UUID) { p.ID = id },
			"id",
		),
		now: time.Now,
	}
}

func (s *Posts) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := s.repo.GetByID(ctx, id.String(), relation("Author"))
	if err != nil {
		return nil, mapError(err, "post", "id", id.String())
	}
	return post, nil
}

func (s *Posts) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.db.NewSelect().Model((*model.Post)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return false, mapError(err, "post", "id", id.String())
	}
	return ok, nil
}

func (s *Posts) FindAll(ctx context.Context, req pagination.Request) ([]*model.Post, int64, error) {
	return s.list(ctx, "all", req)
}

func (s *Posts) FindByAuthor(ctx context.Context, authorID uuid.UUID, req pagination.Request) ([]*model.Post, int64, error) {
	return s.list(ctx, authorID.String(), req, where("p.author_id = ?", authorID))
}

// Search matches titles case-insensitively and posts carrying any of the tags.
func (s *Posts) Search(ctx context.Context, filter store.PostSearch, req pagination.Request) ([]*model.Post, int64, error) {
	criteria := []repository.SelectCriteria{where("p.is_active = ?", true)}
	if title := strings.TrimSpace(filter.Title); title != "" {
		criteria = append(criteria, where("LOWER(p.title) LIKE ?", "%"+strings.ToLower(title)+"%"))
	}
	if len(filter.Tags) > 0 {
		criteria = append(criteria, anyTag(filter.Tags))
	}
	return s.list(ctx, "search", req, criteria...)
}

// Recommend returns recent active posts sharing a tag, most engaged first.
func (s *Posts) Recommend(ctx context.Context, tags []string, exclude []uuid.UUID, req pagination.Request) ([]*model.Post, int64, error) {
	req = req.Normalize()
	criteria := []repository.SelectCriteria{
		where("p.is_active = ?", true),
		where("p.created_at >= ?", s.now().Add(-RecommendWindow).UTC()),
	}
	if len(tags) > 0 {
		criteria = append(criteria, anyTag(tags))
	}
	if len(exclude) > 0 {
		criteria = append(criteria, where("p.id NOT IN (?)", bun.In(exclude)))
	}
	criteria = append(criteria, relation("Author"), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			OrderExpr("p.stats_like_count DESC").
			OrderExpr("p.stats_comment_count DESC").
			OrderExpr("p.stats_save_count DESC").
			OrderExpr("p.created_at DESC").
			Limit(req.Size).
			Offset(req.Offset())
	})

	posts, total, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, 0, mapError(err, "post", "page", "recommend")
	}
	return posts, toInt64(total), nil
}

// Save inserts or rewrites the post and returns the stored row. Counters
// are left untouched on update.
func (s *Posts) Save(ctx context.Context, post *model.Post) (*model.Post, error) {
	if post == nil {
		return nil, store.ErrNilRecord
	}
	model.EnsureID(&post.ID)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	post.Touch(s.now(), post.AuthorID.String())
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if _, err := upsert(ctx, s.db, s.repo, post, postCounterColumns...); err != nil {
		return nil, mapError(err, "post", "id", post.ID.String())
	}
	// the row holds columns the update skipped
	return s.FindByID(ctx, post.ID)
}

func (s *Posts) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*model.Post)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return mapError(err, "post", "id", id.String())
	}
	return expectAffected(res, "post", id.String())
}

func (s *Posts) AdjustLikeCount(ctx context.Context, id uuid.UUID, delta int64) error {
	return adjustCounter(ctx, s.db, (*model.Post)(nil), "post", "stats_like_count", id, delta)
}

func (s *Posts) AdjustSaveCount(ctx context.Context, id uuid.UUID, delta int64) error {
	return adjustCounter(ctx, s.db, (*model.Post)(nil), "post", "stats_save_count", id, delta)
}

// MarkNewComment flags the post as commented and bumps its comment count.
func (s *Posts) MarkNewComment(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewUpdate().
		Model((*model.Post)(nil)).
		Set("has_comments = ?", true).
		Set("stats_comment_count = stats_comment_count + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapError(err, "post", "id", id.String())
	}
	return expectAffected(res, "post", id.String())
}

func (s *Posts) list(ctx context.Context, scope string, req pagination.Request, criteria ...repository.SelectCriteria) ([]*model.Post, int64, error) {
	criteria = append(criteria, relation("Author"), paged("p", req, postSortColumns))
	posts, total, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, 0, mapError(err, "post", "page", scope)
	}
	return posts, toInt64(total), nil
}

// anyTag matches the JSON encoded tag list against each tag.
func anyTag(tags []string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for i, tag := range tags {
				pattern := `%"` + strings.ToLower(strings.TrimSpace(tag)) + `"%`
				if i == 0 {
					q = q.Where("LOWER(p.tags) LIKE ?", pattern)
				} else {
					q = q.WhereOr("LOWER(p.tags) LIKE ?", pattern)
				}
			}
			return q
		})
	}
}
