package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u" json:"-"`

	ID                    uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	FullName              string        `bun:"full_name" json:"fullName"`
	Email                 string        `bun:"email,notnull,unique" json:"email"`
	Username              string        `bun:"username,notnull,unique" json:"username"`
	Password              string        `bun:"password" json:"password,omitempty"`
	ProfilePic            string        `bun:"profile_pic" json:"profilePic,omitempty"`
	ProviderID            string        `bun:"provider_id" json:"providerId,omitempty"`
	ProviderType          ProviderType  `bun:"provider_type,notnull" json:"providerType"`
	Role                  Role          `bun:"role,notnull" json:"role"`
	AccountStatus         AccountStatus `bun:"account_status,notnull" json:"accountStatus"`
	VerificationToken     string        `bun:"verification_token" json:"verificationToken,omitempty"`
	VerificationExpiresAt *time.Time    `bun:"verification_expires_at" json:"verificationExpiresAt,omitempty"`
	VerifiedAt            *time.Time    `bun:"verified_at" json:"verifiedAt,omitempty"`
	Audit
}

func (*User) CacheKind() cache.Kind { return cache.KindUser }

// Validate checks the fields required to persist a user.
func (u *User) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(u,
			validation.Field(&u.Username, validation.Required, validation.Length(3, 50)),
			validation.Field(&u.Email, validation.Required, validation.Match(emailPattern)),
			validation.Field(&u.Role, validation.In(RoleUser, RoleAdmin)),
			validation.Field(&u.ProviderType, validation.In(ProviderLocal, ProviderGoogle, ProviderGithub)),
			validation.Field(&u.AccountStatus, validation.In(AccountPending, AccountActive, AccountSuspended, AccountDeleted)),
		)
	}, "invalid user"); err != nil {
		return err
	}
	return nil
}

// ApplyDefaults fills role, provider and status for a new local account.
func (u *User) ApplyDefaults() {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.ProviderType == "" {
		u.ProviderType = ProviderLocal
	}
	if u.AccountStatus == "" {
		u.AccountStatus = AccountActive
	}
}

// BasicUser is the public projection embedded in posts and comments.
type BasicUser struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	ProfilePic string    `json:"profilePic,omitempty"`
}

// Basic returns the public projection, or the zero value for a nil user.
func (u *User) Basic() BasicUser {
	if u == nil {
		return BasicUser{}
	}
	return BasicUser{ID: u.ID, Username: u.Username, FullName: u.FullName, ProfilePic: u.ProfilePic}
}
