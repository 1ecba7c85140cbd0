package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/internal/config"
	axonErrors "github.com/toyz/receitas/internal/errors"
	"github.com/toyz/receitas/internal/logging"
)

func sqliteConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", ConnectAttempts: 1}
}

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), sqliteConfig(), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDSN(t *testing.T) {
	cfg := config.Default().Database
	cfg.User = "app"
	cfg.Password = "s3cr3t"

	dsn := DSN(cfg)
	assert.Contains(t, dsn, "app:s3cr3t@tcp(localhost:3306)/receitas?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	cfg.DSN = "custom"
	assert.Equal(t, "custom", DSN(cfg))

	assert.Equal(t, "receitas.db", DSN(config.DatabaseConfig{Driver: "sqlite", Name: "receitas"}))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"}, logging.Nop())

	var configErr *axonErrors.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "DB_DRIVER", configErr.Key)
}

func TestOpen_RetriesThenFails(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:          "mysql",
		DSN:             "user:pass@tcp(127.0.0.1:1)/receitas?timeout=100ms",
		ConnectAttempts: 3,
		InitialBackoff:  time.Millisecond,
		BackoffFactor:   2,
	}

	_, err := Open(context.Background(), cfg, logging.Nop())
	require.Error(t, err)

	var axonErr axonErrors.AxonError
	require.True(t, errors.As(err, &axonErr))
	assert.Equal(t, axonErrors.StorageErrorCode, axonErr.ErrorCode())
	assert.Equal(t, 3, axonErr.Context()["attempts"])
}

func TestOpen_CancelledWhileWaiting(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:          "mysql",
		DSN:             "user:pass@tcp(127.0.0.1:1)/receitas?timeout=100ms",
		ConnectAttempts: 10,
		InitialBackoff:  time.Hour,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Open(ctx, cfg, logging.Nop())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMigrate_AppliesOnce(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	ran, err := Migrate(ctx, db, Migrations, logging.Nop())
	require.NoError(t, err)
	assert.Len(t, ran, len(Migrations))

	ran, err = Migrate(ctx, db, Migrations, logging.Nop())
	require.NoError(t, err)
	assert.Empty(t, ran)

	var categories int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categorias").Scan(&categories))
	assert.Equal(t, len(DefaultCategories), categories)

	var role string
	_, err = db.ExecContext(ctx, `INSERT INTO usuarios (id, nome, login, senha, criado_em, alterado_em)
		VALUES ('u1', 'Ana', 'ana@example.com', 'x', ?, ?)`, time.Now(), time.Now())
	require.NoError(t, err)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT nivel_acesso FROM usuarios WHERE id = 'u1'").Scan(&role))
	assert.Equal(t, "DEFAULT", role)
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	migrations := []Migration{
		{Name: "0001_ok", SQLite: []string{"CREATE TABLE a (id TEXT)"}},
		{Name: "0002_broken", SQLite: []string{"CREATE TABLE b (id TEXT)", "NOT SQL"}},
	}

	ran, err := Migrate(ctx, db, migrations, logging.Nop())
	require.Error(t, err)
	assert.Equal(t, []string{"0001_ok"}, ran)
	assert.Contains(t, err.Error(), "0002_broken")

	statuses, err := Status(ctx, db, migrations)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[0].AppliedAt.IsZero())
	assert.False(t, statuses[1].Applied)

	var tables int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'b'").Scan(&tables))
	assert.Zero(t, tables)
}

func TestMigrate_RejectsUnorderedNames(t *testing.T) {
	db := openMemory(t)

	_, err := Migrate(context.Background(), db, []Migration{{Name: "0002_b"}, {Name: "0001_a"}}, logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of order")
}

func TestStatus_BeforeMigrate(t *testing.T) {
	statuses, err := Status(context.Background(), openMemory(t), Migrations)
	require.NoError(t, err)
	require.Len(t, statuses, len(Migrations))
	for _, status := range statuses {
		assert.False(t, status.Applied, status.Name)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	_, err := Migrate(ctx, db, Migrations, logging.Nop())
	require.NoError(t, err)

	insert := `INSERT INTO usuarios (id, nome, login, senha, criado_em, alterado_em) VALUES (?, 'Ana', 'ana@example.com', 'x', ?, ?)`
	_, err = db.ExecContext(ctx, insert, "u1", time.Now(), time.Now())
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "u2", time.Now(), time.Now())
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
