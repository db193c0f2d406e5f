// Package repository defines error types that are reused across the data
// access layer. These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. For example, ErrEmailExists signals a
// uniqueness violation on the email column, while ErrNotFound indicates
// that the requested row does not exist.
package repository

import "errors"

// ErrNotFound is returned when the requested user row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert or an email rename collides
// with an existing row. Handlers should translate this into an HTTP 409
// response. The MySQL duplicate-key error is remapped to this value so
// that raw constraint violations never leak past the repository.
var ErrEmailExists = errors.New("email already exists")
