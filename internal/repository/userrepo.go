package repository

import (
	"context"

	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/model"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	// Create inserts a new user; the username must not be taken.
	Create(ctx context.Context, u *model.User) error
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// UserRepo implements UserRepository on top of any user collection.
type UserRepo struct{ users Collection[model.User] }

// NewUserRepo constructs a user repository.
func NewUserRepo(users Collection[model.User]) *UserRepo { return &UserRepo{users: users} }

// Create appends u. The uniqueness check runs in the same update cycle as the append.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	return r.users.Update(ctx, func(all []model.User) ([]model.User, error) {
		for i := range all {
			if all[i].Username == u.Username {
				return nil, errs.ErrAlreadyExists
			}
		}
		return append(all, *u), nil
	})
}

// GetByUsername scans the collection for an exact username match.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	all, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Username == username {
			u := all[i]
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}
