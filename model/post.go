package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostStats are maintained by atomic counter updates in the store.
type PostStats struct {
	LikeCount    int64 `bun:"like_count,notnull" json:"likeCount"`
	CommentCount int64 `bun:"comment_count,notnull" json:"commentCount"`
	SaveCount    int64 `bun:"save_count,notnull" json:"saveCount"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p" json:"-"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Content     string    `bun:"content" json:"content"`
	Image       string    `bun:"image" json:"image,omitempty"`
	AuthorID    uuid.UUID `bun:"author_id,type:uuid,notnull" json:"authorId"`
	Author      *User     `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	IsActive    bool      `bun:"is_active,notnull" json:"isActive"`
	Tags        []string  `bun:"tags,type:text" json:"tags"`
	HasComments bool      `bun:"has_comments,notnull" json:"hasComments"`
	Stats       PostStats `bun:"embed:stats_" json:"stats"`
	Audit
}

func (*Post) CacheKind() cache.Kind { return cache.KindPost }

func (p *Post) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(p,
			validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
			validation.Field(&p.AuthorID, requiredID),
			validation.Field(&p.Tags, validation.Length(0, 10)),
		)
	}, "invalid post"); err != nil {
		return err
	}
	return nil
}

// PostView is the shape cached in author pages and search results.
type PostView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Image       string    `json:"image,omitempty"`
	Tags        []string  `json:"tags"`
	IsActive    bool      `json:"isActive"`
	HasComments bool      `json:"hasComments"`
	Stats       PostStats `json:"stats"`
	Author      BasicUser `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View projects a post. The author is taken from the loaded relation.
func (p *Post) View() PostView {
	author := p.Author.Basic()
	if author.ID == uuid.Nil {
		author.ID = p.AuthorID
	}
	return PostView{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Image:       p.Image,
		Tags:        p.Tags,
		IsActive:    p.IsActive,
		HasComments: p.HasComments,
		Stats:       p.Stats,
		Author:      author,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
