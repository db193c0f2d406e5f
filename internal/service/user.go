package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/auth-server/internal/model"
	"github.com/iliyamo/auth-server/internal/repository"
	"github.com/iliyamo/auth-server/internal/utils"
)

// UserService implements the CRUD contract over the credential store.
// Mutations are single-row and atomic; the store's unique index on email is
// the authoritative guard against create/rename races, with the pre-checks
// here serving only to produce clean conflict errors on the common path.
type UserService struct {
	Store      UserStore
	BcryptCost int
}

func NewUserService(store UserStore, bcryptCost int) *UserService {
	return &UserService{Store: store, BcryptCost: bcryptCost}
}

// Create hashes the password and inserts a new user. A second create with
// the same email always fails with repository.ErrEmailExists, either via
// the pre-check or via the unique constraint when two creates race.
func (s *UserService) Create(ctx context.Context, email, password string) (model.User, error) {
	if _, err := s.Store.FindByEmail(ctx, email); err == nil {
		return model.User{}, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	return s.Store.Insert(ctx, model.User{Email: email, HashedPassword: hash})
}

// Get returns the user with the given email.
func (s *UserService) Get(ctx context.Context, email string) (model.User, error) {
	return s.Store.FindByEmail(ctx, email)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.Store.ListAll(ctx)
}

// Update applies a typed partial patch to an existing user. Only fields
// present in the patch are touched: a new password is re-hashed, an email
// rename is conflict-checked against live rows, and the admin flag and
// refresh token are overwritten as-is. An empty patch saves the row
// unchanged and is not an error.
func (s *UserService) Update(ctx context.Context, email string, patch model.UserPatch) (model.User, error) {
	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if patch.Password != nil {
		hash, err := utils.HashPassword(*patch.Password, s.BcryptCost)
		if err != nil {
			return model.User{}, err
		}
		u.HashedPassword = hash
	}
	if patch.NewEmail != nil {
		target := strings.ToLower(strings.TrimSpace(*patch.NewEmail))
		if target != u.Email {
			if _, err := s.Store.FindByEmail(ctx, target); err == nil {
				return model.User{}, repository.ErrEmailExists
			} else if !errors.Is(err, repository.ErrNotFound) {
				return model.User{}, err
			}
			u.Email = target
		}
	}
	if patch.IsAdmin != nil {
		u.IsAdmin = *patch.IsAdmin
	}
	if patch.RefreshToken != nil {
		u.RefreshToken = *patch.RefreshToken
	}
	// Save maps a concurrent rename landing on the same email to
	// repository.ErrEmailExists via the unique constraint.
	return s.Store.Save(ctx, u)
}

// Delete hard-deletes the user with the given email.
func (s *UserService) Delete(ctx context.Context, email string) error {
	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, u)
}
