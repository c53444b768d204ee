package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EditWindow is how long after creation an author may edit a comment.
const EditWindow = 15 * time.Minute

type CommentStats struct {
	LikeCount   int64 `bun:"like_count,notnull" json:"likeCount"`
	ReportCount int64 `bun:"report_count,notnull" json:"reportCount"`
}

type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c" json:"-"`

	ID              uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	Description     string       `bun:"description,notnull" json:"description"`
	PostID          uuid.UUID    `bun:"post_id,type:uuid,notnull" json:"postId"`
	UserID          uuid.UUID    `bun:"user_id,type:uuid,notnull" json:"userId"`
	User            *User        `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ParentCommentID *uuid.UUID   `bun:"parent_comment_id,type:uuid" json:"parentCommentId,omitempty"`
	ReplyCount      int64        `bun:"reply_count,notnull" json:"replyCount"`
	Stats           CommentStats `bun:"embed:stats_" json:"stats"`
	IsEdited        bool         `bun:"is_edited,notnull" json:"isEdited"`
	IsDeleted       bool         `bun:"is_deleted,notnull" json:"isDeleted"`
	Audit
}

func (*Comment) CacheKind() cache.Kind { return cache.KindComment }

func (c *Comment) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(c,
			validation.Field(&c.Description, validation.Required, validation.Length(1, 2000)),
			validation.Field(&c.PostID, requiredID),
			validation.Field(&c.UserID, requiredID),
		)
	}, "invalid comment"); err != nil {
		return err
	}
	return nil
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil && *c.ParentCommentID != uuid.Nil
}

// Editable reports whether userID may still edit the comment at now.
func (c *Comment) Editable(userID uuid.UUID, now time.Time) bool {
	return !c.IsDeleted && c.UserID == userID && now.Sub(c.CreatedAt) <= EditWindow
}

type CommentView struct {
	ID              uuid.UUID    `json:"id"`
	Description     string       `json:"description"`
	PostID          uuid.UUID    `json:"postId"`
	ParentCommentID *uuid.UUID   `json:"parentCommentId,omitempty"`
	ReplyCount      int64        `json:"replyCount"`
	Stats           CommentStats `json:"stats"`
	IsEdited        bool         `json:"isEdited"`
	IsDeleted       bool         `json:"isDeleted"`
	User            BasicUser    `json:"user"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// View projects a comment. Soft deleted comments keep their place in a
// thread but lose their text.
func (c *Comment) View() CommentView {
	user := c.User.Basic()
	if user.ID == uuid.Nil {
		user.ID = c.UserID
	}
	description := c.Description
	if c.IsDeleted {
		description = ""
	}
	return CommentView{
		ID:              c.ID,
		Description:     description,
		PostID:          c.PostID,
		ParentCommentID: c.ParentCommentID,
		ReplyCount:      c.ReplyCount,
		Stats:           c.Stats,
		IsEdited:        c.IsEdited,
		IsDeleted:       c.IsDeleted,
		User:            user,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
