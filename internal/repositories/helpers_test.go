package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-blog/internal/config"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// newSQLiteDB opens a migrated sqlite database in a temporary directory.
func newSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "blog.db"), PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

func mustCreateUser(t *testing.T, repo *UserWriteRepository, username, email string) *models.User {
	t.Helper()

	user, err := repo.Create(context.Background(), &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return user
}
