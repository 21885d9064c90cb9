package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jdholdren/sitekit/internal/sitekit"
)

const userNamespace = "-usr"

// EnsureUser creates the user if no user with the same name exists yet, and
// returns whichever is stored.
func (r Repo) EnsureUser(ctx context.Context, usr sitekit.User) (sitekit.User, error) {
	const q = `INSERT INTO users (id, name)
	VALUES (:id, :name)
	ON CONFLICT (name) DO NOTHING;`

	usr.ID = uuid.NewString() + userNamespace
	if _, err := r.db.NamedExecContext(ctx, q, usr); err != nil {
		return sitekit.User{}, fmt.Errorf("error inserting user: %w", err)
	}

	return r.userByName(ctx, usr.Name)
}

func (r Repo) User(ctx context.Context, id string) (sitekit.User, error) {
	const q = `SELECT * FROM users WHERE id = ?;`

	var usr sitekit.User
	err := r.db.GetContext(ctx, &usr, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return sitekit.User{}, sitekit.ErrNotFound
	}
	if err != nil {
		return sitekit.User{}, fmt.Errorf("error fetching user: %w", err)
	}

	return usr, nil
}

func (r Repo) userByName(ctx context.Context, name string) (sitekit.User, error) {
	const q = `SELECT * FROM users WHERE name = ?;`

	var usr sitekit.User
	if err := r.db.GetContext(ctx, &usr, q, name); err != nil {
		return sitekit.User{}, fmt.Errorf("error fetching user by name: %w", err)
	}

	return usr, nil
}

func (r Repo) SetUserActive(ctx context.Context, id string, active bool) error {
	const q = `UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`

	res, err := r.db.ExecContext(ctx, q, active, id)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sitekit.ErrNotFound
	}

	return nil
}
