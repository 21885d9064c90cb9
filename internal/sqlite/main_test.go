package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jdholdren/sitekit/internal/migrations"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

// newTestRepo returns a repo backed by a freshly migrated database that lives
// only as long as the test.
func newTestRepo(t *testing.T) Repo {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dbx, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	require.NoError(t, migrations.Run(dbx))
	// Running twice is a no-op.
	require.NoError(t, migrations.Run(dbx))

	return New(dbx)
}

func mustUser(t *testing.T, r Repo, name string) sitekit.User {
	t.Helper()

	usr, err := r.EnsureUser(context.Background(), sitekit.User{Name: name})
	require.NoError(t, err)
	return usr
}
