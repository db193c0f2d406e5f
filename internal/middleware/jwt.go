package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/auth-server/internal/utils" // token codec shared with the auth service
)

// RequireAccessToken returns an Echo middleware that guards the mutating
// user routes.  The request must carry "Authorization: Bearer <token>" where
// the token verifies against the access secret and is unexpired; the
// token's subject (the caller's email) is injected into the request context
// under "user_email".  Presence of a bearer-shaped string alone is not
// enough: the token is cryptographically validated before any mutation
// handler runs, so a rejected request never reaches the store.
func RequireAccessToken(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Read the Authorization header.  A valid header is the
			// "Bearer" scheme (case-insensitive, per the OAuth2 grammar)
			// followed by the token.  Anything else is rejected with 401
			// before the handler is invoked.
			const scheme = "Bearer "
			auth := c.Request().Header.Get("Authorization")
			if len(auth) < len(scheme) || !strings.EqualFold(auth[:len(scheme)], scheme) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(auth[len(scheme):])

			// DecodeToken pins the algorithm to HMAC and checks signature
			// and expiry in one step.  The distinction between expired and
			// otherwise-invalid tokens is deliberately not surfaced here.
			sub, err := utils.DecodeToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Store the subject for handlers that want to know who mutated
			// what, then continue down the chain.
			c.Set("user_email", sub)
			return next(c)
		}
	}
}
