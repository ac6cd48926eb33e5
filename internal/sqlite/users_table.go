// This file implements the users table accessor.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

var _ types.UsersTable = (*usersTable)(nil)

var emailValidate = validator.New()

type usersTable struct {
	backend *Backend
}

// Create registers email with an already hashed password.
func (t *usersTable) Create(ctx context.Context, email, passwordHash string) (string, error) {
	email = strings.TrimSpace(email)
	if emailValidate.Var(email, "required,email") != nil {
		return "", types.ErrInvalidEmail
	}
	if passwordHash == "" {
		return "", fmt.Errorf("%w: empty password hash", types.ErrInvalidData)
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrVaultDetached
	}

	var one int
	err := b.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email = ?", email).Scan(&one)
	if err == nil {
		return "", types.ErrDuplicateEmail
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("checking email: %w", err)
	}

	id, err := generateUUID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC().Format(timeLayout)
	if _, err := b.db.ExecContext(ctx,
		"INSERT INTO users (user_id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		id, email, passwordHash, now,
	); err != nil {
		return "", fmt.Errorf("inserting user: %w", err)
	}
	if err := b.persist(usersFile, t.persistJSONL); err != nil {
		return "", fmt.Errorf("persisting %s: %w", usersFile, err)
	}
	b.logger.Info("user created", "id", id)
	return id, nil
}

// GetByEmail looks a user up by email, ignoring ASCII case.
func (t *usersTable) GetByEmail(ctx context.Context, email string) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return types.User{}, types.ErrInvalidEmail
	}
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.User{}, types.ErrVaultDetached
	}

	var u types.User
	var created string
	err := b.db.QueryRowContext(ctx,
		"SELECT user_id, email, password_hash, created_at FROM users WHERE email = ?", email,
	).Scan(&u.UserID, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, types.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("getting user: %w", err)
	}
	if ts, err := time.Parse(timeLayout, created); err == nil {
		u.CreatedAt = ts
	} else if ts, err := time.Parse(time.RFC3339, created); err == nil {
		u.CreatedAt = ts
	}
	return u, nil
}

func (t *usersTable) persistJSONL() error {
	b := t.backend
	return snapshotJSONL(b.db, b.config.DataDir, usersFile,
		"SELECT user_id, email, password_hash, created_at FROM users ORDER BY created_at, user_id",
		func(rows *sql.Rows) (json.RawMessage, error) {
			var u userJSON
			if err := rows.Scan(&u.UserID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
				return nil, err
			}
			return json.Marshal(u)
		})
}
