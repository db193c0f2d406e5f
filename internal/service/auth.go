package service

import (
	"context"
	"errors"

	"github.com/iliyamo/auth-server/internal/config"
	"github.com/iliyamo/auth-server/internal/model"
	"github.com/iliyamo/auth-server/internal/repository"
	"github.com/iliyamo/auth-server/internal/utils"
)

// ErrInvalidCredentials is the single undifferentiated authentication
// failure: unknown email, wrong password, and every refresh-token defect
// all collapse into it so responses never reveal whether an email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotAuthorized means the caller authenticated correctly but lacks the
// admin flag required for the admin login route.
var ErrNotAuthorized = errors.New("not an admin user")

// TokenPair carries a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService authenticates credentials against the store and manages the
// token lifecycle: issuing pairs on login, gating admin logins, and
// exchanging a stored refresh token for a new access token.
type AuthService struct {
	Store UserStore
	Cfg   config.Config
}

func NewAuthService(store UserStore, cfg config.Config) *AuthService {
	return &AuthService{Store: store, Cfg: cfg}
}

// Authenticate looks the user up by email and verifies the password against
// the stored bcrypt hash. Both an unknown email and a wrong password return
// ErrInvalidCredentials; infrastructure errors pass through untouched.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.HashedPassword, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// IssueAccessToken mints a short-lived access token for the given email.
func (s *AuthService) IssueAccessToken(email string) (string, error) {
	return utils.EncodeToken(email, s.Cfg.AccessTokenSecret, s.Cfg.AccessTTLMin)
}

// IssueRefreshToken mints a long-lived refresh token for the given email.
// Persisting the token onto the user row is the caller's responsibility.
func (s *AuthService) IssueRefreshToken(email string) (string, error) {
	return utils.EncodeToken(email, s.Cfg.RefreshTokenSecret, s.Cfg.RefreshTTLMin)
}

// Login authenticates the credentials, issues an access/refresh pair and
// persists the refresh token onto the user row. The overwrite invalidates
// any previously issued refresh token: one live session per user.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := s.IssueAccessToken(u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	u.RefreshToken = refresh
	if _, err := s.Store.Save(ctx, u); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// AdminLogin authenticates the credentials and additionally requires the
// admin flag. It issues only an access token; admin sessions have no
// refresh path.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	if !u.IsAdmin {
		return "", ErrNotAuthorized
	}
	return s.IssueAccessToken(u.Email)
}

// Refresh exchanges a refresh token for a new access token. The presented
// token must verify against the refresh secret, be unexpired, name an
// existing user, and match that user's stored refresh token byte for byte.
// A stale token (superseded by a later login) or a never-logged-in user
// fails the comparison. The refresh token itself is not rotated here; only
// a fresh login re-issues it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	email, err := utils.DecodeToken(refreshToken, s.Cfg.RefreshTokenSecret)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if u.RefreshToken == "" || u.RefreshToken != refreshToken {
		return "", ErrInvalidCredentials
	}
	return s.IssueAccessToken(u.Email)
}
