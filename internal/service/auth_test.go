package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-server/internal/service"
	"github.com/iliyamo/auth-server/internal/utils"
)

func TestAuthenticate(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice@example.com", "pw1", false)
	svc := service.NewAuthService(store, testConfig())

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "alice@example.com", password: "pw1"},
		{name: "wrong password", email: "alice@example.com", password: "pw2", wantErr: service.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "pw1", wantErr: service.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, u.Email)
		})
	}
}

func TestLoginIssuesAndPersistsPair(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice@example.com", "pw1", false)
	cfg := testConfig()
	svc := service.NewAuthService(store, cfg)

	pair, err := svc.Login(context.Background(), "alice@example.com", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Each token decodes against its own secret and carries the email.
	sub, err := utils.DecodeToken(pair.AccessToken, cfg.AccessTokenSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)
	sub, err = utils.DecodeToken(pair.RefreshToken, cfg.RefreshTokenSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)

	// Secrets differ, so cross-decoding must fail.
	_, err = utils.DecodeToken(pair.AccessToken, cfg.RefreshTokenSecret)
	assert.Error(t, err)

	// The refresh token was persisted onto the row.
	u, err := store.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, u.RefreshToken)
}

func TestLoginBadCredentials(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice@example.com", "pw1", false)
	svc := service.NewAuthService(store, testConfig())

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// A failed login leaves no session behind.
	u, err := store.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, u.RefreshToken)
}

func TestSecondLoginInvalidatesFirstRefreshToken(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice@example.com", "pw1", false)
	svc := service.NewAuthService(store, testConfig())
	ctx := context.Background()

	first, err := svc.Login(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)

	// Single-session semantics: exactly one live refresh token per user.
	u, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, second.RefreshToken, u.RefreshToken)

	// The superseded token still decodes fine but no longer matches the
	// stored value, so refreshing with it must fail.
	if first.RefreshToken != second.RefreshToken {
		_, err = svc.Refresh(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	}
	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAdminLogin(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "admin@example.com", "adminpw", true)
	seedUser(t, store, "user@example.com", "userpw", false)
	cfg := testConfig()
	svc := service.NewAuthService(store, cfg)
	ctx := context.Background()

	t.Run("admin gets access token only", func(t *testing.T) {
		access, err := svc.AdminLogin(ctx, "admin@example.com", "adminpw")
		require.NoError(t, err)
		sub, err := utils.DecodeToken(access, cfg.AccessTokenSecret)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", sub)

		// No refresh token is minted on the admin path.
		u, err := store.FindByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Empty(t, u.RefreshToken)
	})

	t.Run("non-admin with correct password", func(t *testing.T) {
		_, err := svc.AdminLogin(ctx, "user@example.com", "userpw")
		assert.ErrorIs(t, err, service.ErrNotAuthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.AdminLogin(ctx, "ghost@example.com", "adminpw")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("admin with wrong password", func(t *testing.T) {
		_, err := svc.AdminLogin(ctx, "admin@example.com", "nope")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice@example.com", "pw1", false)
	cfg := testConfig()
	svc := service.NewAuthService(store, cfg)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)

	t.Run("stored token yields new access token", func(t *testing.T) {
		access, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		sub, err := utils.DecodeToken(access, cfg.AccessTokenSecret)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", sub)

		// Refresh does not rotate the refresh token.
		u, err := store.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, u.RefreshToken)
	})

	t.Run("well-formed but never stored", func(t *testing.T) {
		// A different TTL guarantees a different exp claim, so this token
		// can never coincide with the stored one.
		foreign, err := utils.EncodeToken("alice@example.com", cfg.RefreshTokenSecret, cfg.RefreshTTLMin+1)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, foreign)
		_, err = svc.Refresh(ctx, foreign)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("signed with the access secret", func(t *testing.T) {
		wrong, err := utils.EncodeToken("alice@example.com", cfg.AccessTokenSecret, cfg.RefreshTTLMin)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, wrong)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		expired, err := utils.EncodeToken("alice@example.com", cfg.RefreshTokenSecret, -1)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, expired)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		ghost := seedUser(t, store, "ghost@example.com", "pw", false)
		ghostPair, err := svc.Login(ctx, "ghost@example.com", "pw")
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, ghost))
		_, err = svc.Refresh(ctx, ghostPair.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("never logged in", func(t *testing.T) {
		seedUser(t, store, "fresh@example.com", "pw", false)
		minted, err := utils.EncodeToken("fresh@example.com", cfg.RefreshTokenSecret, cfg.RefreshTTLMin)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, minted)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestIssueTokensDoNotPersist(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice@example.com", "pw1", false)
	svc := service.NewAuthService(store, testConfig())

	// Issuing a refresh token directly is side-effect free; persistence is
	// the caller's responsibility (Login does it, nothing else).
	_, err := svc.IssueRefreshToken("alice@example.com")
	require.NoError(t, err)
	u, err := store.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, u.RefreshToken)
}
