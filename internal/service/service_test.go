package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docuisine/internal/core/database"
	"docuisine/internal/repo"
)

// newTestDB opens a private in-memory sqlite database with the schema
// migrated. A single connection keeps the database alive for the test.
func newTestDB(t *testing.T) *repo.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, "sqlite"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return repo.New(db)
}

func ptr[T any](v T) *T { return &v }
