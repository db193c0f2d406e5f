package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel error matching
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/go-playground/validator/v10" // request DTO validation
	"github.com/labstack/echo/v4"            // Echo framework for HTTP routing

	"github.com/iliyamo/auth-server/internal/queue"   // audit event publishing
	"github.com/iliyamo/auth-server/internal/service" // auth business logic
)

// validate is shared by all handlers in this package; a validator.Validate
// instance caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// AuthHandler bundles dependencies for the token endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// tokenResp mirrors the OAuth2-style response body: the refresh token is
// present only on the password login route.
type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// publishAsync emits an audit event without blocking the request; broker
// failures are logged inside the publisher and otherwise ignored.
func publishAsync(ev queue.AuthEvent) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishAuthEvent(ctx, ev)
	}()
}

// Token handles POST /token/: password login returning an access/refresh
// pair. Bad credentials are always 401 with no distinction between unknown
// email and wrong password.
func (h *AuthHandler) Token(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	publishAsync(queue.AuthEvent{Kind: queue.EventUserLogin, Email: req.Email, RemoteIP: c.RealIP()})

	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// AdminToken handles POST /admin_token/: form-encoded login (username +
// password, web login form style) for admin accounts. A correct password on
// a non-admin account is 403, not 401.
func (h *AuthHandler) AdminToken(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("username")))
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, err := h.Auth.AdminLogin(ctx, email, password)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not an admin user"})
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	publishAsync(queue.AuthEvent{Kind: queue.EventAdminLogin, Email: email, RemoteIP: c.RealIP()})

	return c.JSON(http.StatusOK, tokenResp{AccessToken: access, TokenType: "bearer"})
}

// Refresh handles POST /refresh/: exchanges a stored refresh token for a
// new access token. Every validation failure collapses into 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	return c.JSON(http.StatusOK, tokenResp{AccessToken: access, TokenType: "bearer"})
}
