// Package dbtest opens migrated in-memory databases for repository tests
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/internal/config"
	"github.com/toyz/receitas/internal/database"
	"github.com/toyz/receitas/internal/logging"
)

// New returns a sqlite :memory: database with every migration applied.
// The database is closed when the test ends.
func New(t testing.TB) *database.DB {
	t.Helper()

	cfg := config.DatabaseConfig{Driver: string(database.SQLite), DSN: ":memory:", ConnectAttempts: 1}
	db, err := database.Open(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(context.Background(), db, database.Migrations, logging.Nop())
	require.NoError(t, err)
	return db
}
