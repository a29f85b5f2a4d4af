package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// CreateUser inserts u. Returns ErrDuplicateUsername if the username exists.
func (b *Backend) CreateUser(ctx context.Context, u *types.User) error {
	if u == nil {
		return types.ErrInvalidData
	}
	if u.Username == "" {
		return types.ErrInvalidUsername
	}

	createdAt := u.CreatedAt
	err := b.write(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE username = ?", u.Username).Scan(&exists)
		if err == nil {
			return types.ErrDuplicateUsername
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return storageErr("checking user", err)
		}

		if createdAt.IsZero() {
			createdAt = b.stamp()
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
			u.Username, u.PasswordHash, formatTime(createdAt)); err != nil {
			return storageErr("inserting user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	u.CreatedAt = createdAt.UTC()
	return nil
}

// GetUser returns the user with the exact username or ErrUnknownUsername.
func (b *Backend) GetUser(ctx context.Context, username string) (*types.User, error) {
	var u *types.User
	err := b.read(ctx, func(tx *sql.Tx) error {
		var created string
		var found types.User
		err := tx.QueryRowContext(ctx,
			"SELECT username, password_hash, created_at FROM users WHERE username = ?",
			username).Scan(&found.Username, &found.PasswordHash, &created)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrUnknownUsername
		}
		if err != nil {
			return storageErr("scanning user", err)
		}
		if found.CreatedAt, err = parseTime(created); err != nil {
			return storageErr("parsing user created_at", err)
		}
		u = &found
		return nil
	})
	return u, err
}
