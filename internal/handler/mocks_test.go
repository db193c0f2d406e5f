package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/auth-server/internal/config"
	"github.com/iliyamo/auth-server/internal/handler"
	"github.com/iliyamo/auth-server/internal/middleware"
	"github.com/iliyamo/auth-server/internal/model"
	"github.com/iliyamo/auth-server/internal/repository"
	"github.com/iliyamo/auth-server/internal/router"
	"github.com/iliyamo/auth-server/internal/service"
	"github.com/iliyamo/auth-server/internal/utils"
)

// fakeStore mirrors the repository's sentinel-error contract in memory so
// handler tests can run the full route → middleware → service → store path
// without MySQL.
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

func testConfig() config.Config {
	return config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTTLMin:       15,
		RefreshTTLMin:      1440,
		BcryptCost:         bcrypt.MinCost,
	}
}

// newTestApp wires the real routes over the fake store. The rate limiter is
// the real constructor with no Redis client, which degrades to the same
// pass-through production runs with when Redis is down.
func newTestApp(t *testing.T) (*echo.Echo, *fakeStore, config.Config) {
	t.Helper()
	store := newFakeStore()
	cfg := testConfig()

	authSvc := service.NewAuthService(store, cfg)
	userSvc := service.NewUserService(store, cfg.BcryptCost)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), nil)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), limiter)
	router.RegisterUsers(e, handler.NewUserHandler(userSvc), cfg.AccessTokenSecret)
	return e, store, cfg
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

// accessTokenFor mints a valid access token the way the service would.
func accessTokenFor(t *testing.T, cfg config.Config, email string) string {
	t.Helper()
	token, err := utils.EncodeToken(email, cfg.AccessTokenSecret, cfg.AccessTTLMin)
	require.NoError(t, err)
	return token
}

// doJSON performs a JSON request against the app and returns the recorder.
func doJSON(e *echo.Echo, method, target, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// doForm performs a form-encoded POST, as a browser login form would.
func doForm(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body into a map for assertions.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
