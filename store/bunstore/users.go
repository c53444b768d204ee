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

var userSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"username":   true,
	"full_name":  true,
}

// Users implements store.UserStore.
type Users struct {
	db   *bun.DB
	repo repository.Repository[*model.User]
	now  func() time.Time
}

var _ store.UserStore = (*Users)(nil)

func NewUsers(db *bun.DB) *Users {
	return &Users{
		db: db,
		repo: newRepository(db,
			func() *model.User { return &model.User{} },
			func(u *model.User) uuid.UUID { return u.ID },
			func(u *model.User, id uuid.UUID) { u.ID = id },
			"username",
		),
		now: time.Now,
	}
}

func (s *Users) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapError(err, "user", "id", id.String())
	}
	return user, nil
}

func (s *Users) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findOne(ctx, "username", username, where("u.username = ?", username))
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(email)
	return s.findOne(ctx, "email", email, where("u.email = ?", email))
}

func (s *Users) FindByUsernameOrEmail(ctx context.Context, value string) (*model.User, error) {
	return s.findOne(ctx, "username_or_email", value, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("u.username = ?", value).WhereOr("u.email = ?", strings.ToLower(value))
		})
	})
}

func (s *Users) FindByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	return s.findOne(ctx, "provider_id", providerID, where("u.provider_id = ?", providerID))
}

func (s *Users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = ?", username)
}

func (s *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email = ?", strings.ToLower(email))
}

func (s *Users) ExistsByProviderID(ctx context.Context, providerID string) (bool, error) {
	return s.exists(ctx, "provider_id = ?", providerID)
}

func (s *Users) FindAll(ctx context.Context, req pagination.Request) ([]*model.User, int64, error) {
	users, total, err := s.repo.List(ctx, paged("u", req, userSortColumns))
	if err != nil {
		return nil, 0, mapError(err, "user", "page", "all")
	}
	return users, toInt64(total), nil
}

// Save inserts or fully rewrites the user.
func (s *Users) Save(ctx context.Context, user *model.User) (*model.User, error) {
	if user == nil {
		return nil, store.ErrNilRecord
	}
	model.EnsureID(&user.ID)
	user.Email = strings.ToLower(user.Email)
	user.ApplyDefaults()
	user.Touch(s.now(), user.ID.String())
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if _, err := upsert(ctx, s.db, s.repo, user); err != nil {
		return nil, mapError(err, "user", "id", user.ID.String())
	}
	// the row holds columns the update skipped
	return s.FindByID(ctx, user.ID)
}

func (s *Users) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return mapError(s.repo.Delete(ctx, user), "user", "id", id.String())
}

func (s *Users) findOne(ctx context.Context, by, value string, criteria repository.SelectCriteria) (*model.User, error) {
	user, err := s.repo.Get(ctx, criteria)
	if err != nil {
		return nil, mapError(err, "user", by, value)
	}
	return user, nil
}

func (s *Users) exists(ctx context.Context, query string, arg any) (bool, error) {
	ok, err := s.db.NewSelect().Model((*model.User)(nil)).Where(query, arg).Exists(ctx)
	if err != nil {
		return false, mapError(err, "user", "exists", query)
	}
	return ok, nil
}
