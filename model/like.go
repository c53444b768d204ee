package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Like struct {
	bun.BaseModel `bun:"table:likes,alias:l" json:"-"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID     uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"userId"`
	TargetID   uuid.UUID  `bun:"target_id,type:uuid,notnull" json:"targetId"`
	TargetType TargetType `bun:"target_type,notnull" json:"targetType"`
	LikeType   LikeType   `bun:"like_type,notnull" json:"likeType"`
	Audit
}

func (*Like) CacheKind() cache.Kind { return cache.KindLike }

func (l *Like) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(l,
			validation.Field(&l.UserID, requiredID),
			validation.Field(&l.TargetID, requiredID),
			validation.Field(&l.TargetType, validation.Required, validation.In(TargetPost, TargetComment)),
			validation.Field(&l.LikeType, validation.In(LikeLike, LikeLove, LikeHaha, LikeWow, LikeSad, LikeAngry)),
		)
	}, "invalid like"); err != nil {
		return err
	}
	return nil
}
