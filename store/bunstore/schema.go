package bunstore

import (
	"context"

	"github.com/goliatone/go-blog-cache/model"
	"github.com/uptrace/bun"
)

var models = []any{
	(*model.User)(nil),
	(*model.Post)(nil),
	(*model.Comment)(nil),
	(*model.SavedPost)(nil),
	(*model.Like)(nil),
}

type index struct {
	model   any
	name    string
	unique  bool
	columns []string
}

var indexes = []index{
	{(*model.Post)(nil), "posts_author_idx", false, []string{"author_id", "created_at"}},
	{(*model.Comment)(nil), "comments_post_idx", false, []string{"post_id", "created_at"}},
	{(*model.Comment)(nil), "comments_parent_idx", false, []string{"parent_comment_id"}},
	{(*model.SavedPost)(nil), "saved_posts_user_post_idx", true, []string{"user_id", "post_id"}},
	{(*model.Like)(nil), "likes_user_target_idx", true, []string{"user_id", "target_id", "target_type"}},
}

// CreateSchema creates every table and index that does not exist yet.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	for _, idx := range indexes {
		q := db.NewCreateIndex().Model(idx.model).IfNotExists().Index(idx.name).Column(idx.columns...)
		if idx.unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
