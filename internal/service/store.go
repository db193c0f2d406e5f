// Package service implements the authentication and user-management
// operations behind the HTTP handlers. Services hold no HTTP concerns:
// they speak sentinel errors and domain types only, and handlers translate
// those into status codes.
package service

import (
	"context"

	"github.com/iliyamo/auth-server/internal/model"
)

// UserStore is the credential store consumed by the services.  It is
// satisfied by *repository.UserRepo in production and by an in-memory fake
// in tests.  All operations are synchronous and scoped to the request
// context.  Insert and Save must surface duplicate emails as
// repository.ErrEmailExists and missing rows as repository.ErrNotFound.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Insert(ctx context.Context, u model.User) (model.User, error)
	Save(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, u model.User) error
	ListAll(ctx context.Context) ([]model.User, error)
}
