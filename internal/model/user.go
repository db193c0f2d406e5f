package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository and service layers; handlers define separate response types
// with appropriate JSON tags so that the password hash and the stored
// refresh token are never echoed outward.
//
// Fields:
//  ID             – primary key identifier of the user, assigned on insert.
//  Email          – unique email address (normalized to lower case).
//  HashedPassword – bcrypt hashed password, never empty for a persisted row.
//  RefreshToken   – the currently live refresh token, empty when the user
//                   has never logged in.  Exactly one refresh token is live
//                   per user; a new login overwrites the previous value.
//  IsAdmin        – whether the account may obtain admin access tokens.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64    // users.id
	Email          string    // users.email
	HashedPassword string    // users.hashed_password
	RefreshToken   string    // users.refresh_token (empty = NULL)
	IsAdmin        bool      // users.is_admin
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// UserPatch is a typed partial update for a user row.  Only non-nil fields
// are applied; everything else keeps its prior value.  The set of patchable
// fields is fixed here at compile time rather than discovered at runtime.
//
// Fields:
//  Password     – new plaintext password; the service re-hashes it before
//                 the row is saved.
//  NewEmail     – target email for a rename; must not collide with another
//                 live row.
//  IsAdmin      – toggles the admin flag.
//  RefreshToken – replaces the stored refresh token (login rotation).
type UserPatch struct {
	Password     *string
	NewEmail     *string
	IsAdmin      *bool
	RefreshToken *string
}
