package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/auth-server/internal/config"
	"github.com/iliyamo/auth-server/internal/model"
	"github.com/iliyamo/auth-server/internal/repository"
	"github.com/iliyamo/auth-server/internal/utils"
)

// fakeStore is an in-memory UserStore honoring the same sentinel-error
// contract as the MySQL repository: duplicate emails surface as
// repository.ErrEmailExists, missing rows as repository.ErrNotFound.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, rows: map[uint64]model.User{}}
}

func norm(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (f *fakeStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = norm(email)
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeStore) Insert(_ context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = norm(u.Email)
	for _, row := range f.rows {
		if row.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.rows[u.ID] = u
	return u, nil
}

func (f *fakeStore) Save(_ context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[u.ID]; !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.Email = norm(u.Email)
	for id, row := range f.rows {
		if id != u.ID && row.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	f.rows[u.ID] = u
	return u, nil
}

func (f *fakeStore) Delete(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[u.ID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, u.ID)
	return nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.rows))
	for _, u := range f.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// testConfig returns a config with distinct secrets and the cheapest bcrypt
// cost so the suite stays fast.
func testConfig() config.Config {
	return config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTTLMin:       15,
		RefreshTTLMin:      1440,
		BcryptCost:         bcrypt.MinCost,
	}
}

// seedUser inserts a user with a real bcrypt hash directly into the store.
func seedUser(t *testing.T, store *fakeStore, email, password string, isAdmin bool) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u, err := store.Insert(context.Background(), model.User{
		Email:          email,
		HashedPassword: hash,
		IsAdmin:        isAdmin,
	})
	require.NoError(t, err)
	return u
}
