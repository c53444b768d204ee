package repositorycache

import (
	"context"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

// Users caches users by id and by username.
type Users struct {
	store    store.UserStore
	entities *cache.EntityCache[*model.User]
	opts     options
}

func NewUsers(primary store.UserStore, entities *cache.EntityCache[*model.User], opts ...Option) *Users {
	return &Users{store: primary, entities: entities, opts: applyOptions("users", opts)}
}

func (r *Users) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if !cacheBypassed(ctx) {
		if user, ok := r.entities.GetByID(ctx, id.String()); ok {
			return user, nil
		}
	}

	user, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, user)
	return user, nil
}

// FindByUsername tries the by-name entry, then the store.
func (r *Users) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if !cacheBypassed(ctx) {
		if user, ok := r.entities.GetByName(ctx, username); ok {
			return user, nil
		}
	}

	user, err := r.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, user)
	return user, nil
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.load(ctx, func(ctx context.Context) (*model.User, error) {
		return r.store.FindByEmail(ctx, email)
	})
}

func (r *Users) FindByUsernameOrEmail(ctx context.Context, value string) (*model.User, error) {
	return r.load(ctx, func(ctx context.Context) (*model.User, error) {
		return r.store.FindByUsernameOrEmail(ctx, value)
	})
}

func (r *Users) FindByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	return r.load(ctx, func(ctx context.Context) (*model.User, error) {
		return r.store.FindByProviderID(ctx, providerID)
	})
}

func (r *Users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.store.ExistsByUsername(ctx, username)
}

func (r *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.store.ExistsByEmail(ctx, email)
}

func (r *Users) ExistsByProviderID(ctx context.Context, providerID string) (bool, error) {
	return r.store.ExistsByProviderID(ctx, providerID)
}

// FindAll lists every user. Admin listings are not cached.
func (r *Users) FindAll(ctx context.Context, req pagination.Request) (pagination.Page[model.BasicUser], error) {
	return uncachedPage(ctx, req, func(ctx context.Context, req pagination.Request) (pagination.Page[model.BasicUser], error) {
		users, total, err := r.store.FindAll(ctx, req)
		if err != nil {
			return pagination.Page[model.BasicUser]{}, err
		}
		return pagination.Map(pagination.Build(users, req, total), (*model.User).Basic), nil
	})
}

// Save writes the user and refreshes both cache entries. A renamed user
// loses the entry under the old username.
func (r *Users) Save(ctx context.Context, user *model.User) (*model.User, error) {
	if user == nil {
		return nil, store.ErrNilRecord
	}

	var previous string
	if user.ID != uuid.Nil {
		if old, err := r.store.FindByID(ctx, user.ID); err == nil {
			previous = old.Username
		} else if !store.IsNotFound(err) {
			return nil, err
		}
	}

	saved, err := r.store.Save(ctx, user)
	if err != nil {
		return nil, err
	}

	if previous != "" && previous != saved.Username {
		r.entities.DeleteByName(ctx, previous)
	}
	r.remember(ctx, saved)
	return saved, nil
}

func (r *Users) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := r.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return r.delete(ctx, user)
}

func (r *Users) DeleteByUsername(ctx context.Context, username string) error {
	user, err := r.store.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	return r.delete(ctx, user)
}

func (r *Users) delete(ctx context.Context, user *model.User) error {
	if err := r.store.Delete(ctx, user.ID); err != nil {
		return err
	}
	r.entities.DeleteByID(ctx, user.ID.String())
	r.entities.DeleteByName(ctx, user.Username)
	return nil
}

func (r *Users) load(ctx context.Context, find func(context.Context) (*model.User, error)) (*model.User, error) {
	user, err := find(ctx)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, user)
	return user, nil
}

// remember caches user under its id and username.
func (r *Users) remember(ctx context.Context, user *model.User) {
	if cacheBypassed(ctx) {
		return
	}
	remember(ctx, r.entities, user.ID.String(), user, r.opts.ttl.UserByID, r.opts.logger)
	if err := r.entities.PutByName(ctx, user.Username, user, r.opts.ttl.UserByName); err != nil {
		r.opts.logger.Warn().Err(err).Str("username", user.Username).Msg("skipped entity cache write")
	}
}
