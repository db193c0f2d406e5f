package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-server/internal/model"
	"github.com/iliyamo/auth-server/internal/queue"
	"github.com/iliyamo/auth-server/internal/repository"
	"github.com/iliyamo/auth-server/internal/service"
)

// UserHandler bundles dependencies for the user CRUD endpoints. Mutating
// routes are registered behind the bearer gate; reads are public.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// ----- DTOs -----

type createUserReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userShow is the public projection of a user row: the password hash and
// the stored refresh token are never echoed outward.
type userShow struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

func showUser(u model.User) userShow {
	return userShow{ID: u.ID, Email: u.Email}
}

// emailQuery extracts and validates the ?email= query parameter shared by
// the single-user routes.
func emailQuery(c echo.Context) (string, error) {
	email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", err
	}
	return email, nil
}

// Create handles POST /user/: hash the password, insert, return the public
// view. A duplicate email is 409 whether it is caught by the pre-check or
// by the unique constraint under a race.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	publishAsync(queue.AuthEvent{Kind: queue.EventUserCreated, UserID: u.ID, Email: u.Email, RemoteIP: c.RealIP()})

	return c.JSON(http.StatusCreated, showUser(u))
}

// Get handles GET /user/?email=.
func (h *UserHandler) Get(c echo.Context) error {
	email, err := emailQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email query param required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, showUser(u))
}

// List handles GET /users/. Always returns an array, possibly empty.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userShow, 0, len(users))
	for _, u := range users {
		out = append(out, showUser(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /user/?email=&password=&new_email=. Only supplied
// parameters are applied; omitting both is a valid no-op update.
func (h *UserHandler) Update(c echo.Context) error {
	email, err := emailQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email query param required"})
	}

	var patch model.UserPatch
	if pw := c.QueryParam("password"); pw != "" {
		patch.Password = &pw
	}
	if ne := strings.ToLower(strings.TrimSpace(c.QueryParam("new_email"))); ne != "" {
		if err := validate.Var(ne, "email"); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_email must be a valid email"})
		}
		patch.NewEmail = &ne
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Update(ctx, email, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, showUser(u))
}

// Delete handles DELETE /user/?email=.
func (h *UserHandler) Delete(c echo.Context) error {
	email, err := emailQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email query param required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}

	publishAsync(queue.AuthEvent{Kind: queue.EventUserDeleted, Email: email, RemoteIP: c.RealIP()})

	return c.NoContent(http.StatusNoContent)
}
