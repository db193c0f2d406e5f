package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/auth-server/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/auth-server/internal/middleware" // import middleware for the bearer gate
)

// RegisterRoutes registers routes that do not belong to the token or user
// groups on the provided Echo instance.  Currently it exposes only a
// health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the three token endpoints.  None of them require
// an existing session; all of them share the rate limiter because login
// and refresh attempts are the brute-force surface of the service.  The
// limiter middleware may be a pass-through when Redis is not configured.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	// Password login: accepts a JSON body with email and password and
	// returns an access/refresh token pair.
	e.POST("/token/", a.Token, limiter)
	// Admin login: accepts a classic web login form (username + password)
	// and returns an access token only.  Non-admin accounts are rejected
	// with 403 even when the password is correct.
	e.POST("/admin_token/", a.AdminToken, limiter)
	// Token refresh: exchanges the stored refresh token for a new access
	// token without rotating the refresh token itself.
	e.POST("/refresh/", a.Refresh, limiter)
}

// RegisterUsers registers the user CRUD endpoints.  Reads are public;
// every mutating route (create, update, delete) sits behind the bearer
// gate, which validates the presented access token against the access
// secret before the handler runs.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, accessSecret string) {
	gate := middleware.RequireAccessToken(accessSecret)

	// Mutations: gated.
	e.POST("/user/", u.Create, gate)
	e.PUT("/user/", u.Update, gate)
	e.DELETE("/user/", u.Delete, gate)

	// Reads: unauthenticated by design.
	e.GET("/user/", u.Get)
	e.GET("/users/", u.List)
}
