package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-server/internal/model"
)

// UserRepo persists users in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// isDuplicate reports whether err is a MySQL duplicate-key violation (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// refreshNull maps the empty string to SQL NULL so a never-logged-in user
// keeps a NULL refresh_token column.
func refreshNull(token string) sql.NullString {
	return sql.NullString{String: token, Valid: token != ""}
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		u       model.User
		refresh sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,hashed_password,refresh_token,is_admin,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.HashedPassword, &refresh, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.RefreshToken = refresh.String
	return u, nil
}

// Insert stores a new user and returns it with the assigned ID.
func (r *UserRepo) Insert(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, hashed_password, refresh_token, is_admin) VALUES (?,?,?,?)",
		u.Email, u.HashedPassword, refreshNull(u.RefreshToken), u.IsAdmin)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u.ID = uint64(id)
	return u, nil
}

// Save writes all mutable columns of an existing row, keyed by ID.
func (r *UserRepo) Save(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, hashed_password=?, refresh_token=?, is_admin=? WHERE id=?",
		u.Email, u.HashedPassword, refreshNull(u.RefreshToken), u.IsAdmin, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both when the row vanished and when nothing
		// changed; re-check existence to tell them apart.
		var exists bool
		if qerr := r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id=?)", u.ID).Scan(&exists); qerr == nil && !exists {
			return model.User{}, ErrNotFound
		}
	}
	return u, nil
}

// Delete hard-deletes a user row.
func (r *UserRepo) Delete(ctx context.Context, u model.User) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", u.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every user row ordered by id.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,hashed_password,refresh_token,is_admin,created_at,updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			u       model.User
			refresh sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.HashedPassword, &refresh, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.RefreshToken = refresh.String
		users = append(users, u)
	}
	return users, rows.Err()
}
