package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Audit carries creation and modification metadata shared by every entity.
type Audit struct {
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
	CreatedBy string    `bun:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `bun:"updated_by" json:"updatedBy,omitempty"`
}

// Touch stamps the audit fields. CreatedAt is only set once.
func (a *Audit) Touch(now time.Time, by string) {
	now = now.UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
		a.CreatedBy = by
	}
	a.UpdatedAt = now
	if by != "" {
		a.UpdatedBy = by
	}
}

// EnsureID assigns a new id when id is the zero value.
func EnsureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// requiredID fails for uuid.Nil, which ozzo's Required accepts.
var requiredID = validation.By(func(value any) error {
	switch id := value.(type) {
	case uuid.UUID:
		if id != uuid.Nil {
			return nil
		}
	case *uuid.UUID:
		if id != nil && *id != uuid.Nil {
			return nil
		}
	}
	return validation.NewError("validation_required", "cannot be blank")
})
