package model

import (
	"time"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SavedPost struct {
	bun.BaseModel `bun:"table:saved_posts,alias:sp" json:"-"`

	ID     uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID uuid.UUID `bun:"user_id,type:uuid,notnull" json:"userId"`
	PostID uuid.UUID `bun:"post_id,type:uuid,notnull" json:"postId"`
	Post   *Post     `bun:"rel:belongs-to,join:post_id=id" json:"post,omitempty"`
	Notes  string    `bun:"notes" json:"notes,omitempty"`
	Audit
}

func (*SavedPost) CacheKind() cache.Kind { return cache.KindSavedPost }

type SavedPostView struct {
	ID      uuid.UUID `json:"id"`
	Notes   string    `json:"notes,omitempty"`
	SavedAt time.Time `json:"savedAt"`
	Post    PostView  `json:"post"`
}

func (s *SavedPost) View() SavedPostView {
	view := SavedPostView{ID: s.ID, Notes: s.Notes, SavedAt: s.CreatedAt}
	if s.Post != nil {
		view.Post = s.Post.View()
	} else {
		view.Post.ID = s.PostID
	}
	return view
}
