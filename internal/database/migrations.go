package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	axonErrors "github.com/toyz/receitas/internal/errors"
)

// Migration is one schema change. Statements run in order inside a single transaction.
type Migration struct {
	Name   string
	MySQL  []string
	SQLite []string
}

func (m Migration) statements(dialect Dialect) []string {
	if dialect == SQLite {
		return m.SQLite
	}
	return m.MySQL
}

// MigrationStatus reports whether a migration was applied
type MigrationStatus struct {
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// DefaultCategories are inserted by the seed migration
var DefaultCategories = []struct{ ID, Nome string }{
	{"0b6f4c3e-8d52-4f0e-9a51-1f3c2a7e9b01", "Bolos e tortas doces"},
	{"1c7a5d4f-9e63-4a1f-8b62-2a4d3b8fac02", "Carnes"},
	{"2d8b6e5a-af74-4b2a-9c73-3b5e4c9abd03", "Aves"},
	{"3e9c7f6b-b085-4c3b-8d84-4c6f5dabce04", "Peixes e frutos do mar"},
	{"4fad8a7c-c196-4d4c-9e95-5d7a6ebcdf05", "Saladas, molhos e acompanhamentos"},
	{"5abe9b8d-d2a7-4e5d-8fa6-6e8b7fcdea06", "Sopas"},
	{"6bcfac9e-e3b8-4f6e-9ab7-7f9c8adefb07", "Massas"},
	{"7cd0bdaf-f4c9-4a7f-8bc8-8aad9bef0c08", "Bebidas"},
	{"8de1ceb0-05da-4b80-9cd9-9bbeacf01d09", "Doces e sobremesas"},
	{"9ef2dfc1-16eb-4c91-8dea-acbfbd012e10", "Lanches"},
	{"a0f3e0d2-27fc-4da2-9efb-bdc0ce123f11", "Prato Único"},
	{"b104f1e3-380d-4eb3-8f0c-ced1df234a12", "Light"},
	{"c21502f4-491e-4fc4-9a1d-dfe2e0345b13", "Alimentação Saudável"},
}

// Migrations is the ordered schema history
var Migrations = []Migration{
	{
		Name: "0001_create_usuarios",
		MySQL: []string{`
			CREATE TABLE IF NOT EXISTS usuarios (
				id          VARCHAR(36)  NOT NULL PRIMARY KEY,
				nome        VARCHAR(100) NOT NULL,
				login       VARCHAR(100) NOT NULL,
				senha       VARCHAR(100) NOT NULL,
				criado_em   DATETIME     NOT NULL,
				alterado_em DATETIME     NOT NULL,
				UNIQUE KEY uq_usuarios_login (login)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
		SQLite: []string{`
			CREATE TABLE IF NOT EXISTS usuarios (
				id          TEXT     NOT NULL PRIMARY KEY,
				nome        TEXT     NOT NULL,
				login       TEXT     NOT NULL UNIQUE,
				senha       TEXT     NOT NULL,
				criado_em   DATETIME NOT NULL,
				alterado_em DATETIME NOT NULL
			)`},
	},
	{
		Name: "0002_create_categorias",
		MySQL: []string{`
			CREATE TABLE IF NOT EXISTS categorias (
				id   VARCHAR(36)  NOT NULL PRIMARY KEY,
				nome VARCHAR(100) NOT NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
		SQLite: []string{`
			CREATE TABLE IF NOT EXISTS categorias (
				id   TEXT NOT NULL PRIMARY KEY,
				nome TEXT NOT NULL
			)`},
	},
	{
		Name: "0003_create_receitas",
		MySQL: []string{`
			CREATE TABLE IF NOT EXISTS receitas (
				id                    VARCHAR(36)  NOT NULL PRIMARY KEY,
				id_usuarios           VARCHAR(36)  NOT NULL,
				id_categorias         VARCHAR(36)  NOT NULL,
				nome                  VARCHAR(45)  NOT NULL,
				tempo_preparo_minutos INT          NULL,
				porcoes               INT          NULL,
				modo_preparo          TEXT         NOT NULL,
				ingredientes          TEXT         NULL,
				criado_em             DATETIME     NOT NULL,
				alterado_em           DATETIME     NOT NULL,
				INDEX idx_receitas_usuario (id_usuarios),
				CONSTRAINT fk_receitas_usuarios FOREIGN KEY (id_usuarios) REFERENCES usuarios (id),
				CONSTRAINT fk_receitas_categorias FOREIGN KEY (id_categorias) REFERENCES categorias (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
		SQLite: []string{`
			CREATE TABLE IF NOT EXISTS receitas (
				id                    TEXT     NOT NULL PRIMARY KEY,
				id_usuarios           TEXT     NOT NULL REFERENCES usuarios (id),
				id_categorias         TEXT     NOT NULL REFERENCES categorias (id),
				nome                  TEXT     NOT NULL,
				tempo_preparo_minutos INTEGER  NULL,
				porcoes               INTEGER  NULL,
				modo_preparo          TEXT     NOT NULL,
				ingredientes          TEXT     NULL,
				criado_em             DATETIME NOT NULL,
				alterado_em           DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_receitas_usuario ON receitas (id_usuarios)`,
		},
	},
	{
		Name: "0004_add_recovery_token_to_usuarios",
		MySQL: []string{`
			ALTER TABLE usuarios
				ADD COLUMN recovery_token VARCHAR(255) NULL,
				ADD COLUMN recovery_token_expires DATETIME NULL,
				ADD INDEX idx_recovery_token (recovery_token)`},
		SQLite: []string{
			`ALTER TABLE usuarios ADD COLUMN recovery_token TEXT NULL`,
			`ALTER TABLE usuarios ADD COLUMN recovery_token_expires DATETIME NULL`,
			`CREATE INDEX IF NOT EXISTS idx_recovery_token ON usuarios (recovery_token)`,
		},
	},
	{
		Name: "0005_add_nivel_acesso_to_usuarios",
		MySQL: []string{`
			ALTER TABLE usuarios
				ADD COLUMN nivel_acesso ENUM('ADMIN', 'DEFAULT') NOT NULL DEFAULT 'DEFAULT'`},
		SQLite: []string{`
			ALTER TABLE usuarios
				ADD COLUMN nivel_acesso TEXT NOT NULL DEFAULT 'DEFAULT' CHECK (nivel_acesso IN ('ADMIN', 'DEFAULT'))`},
	},
	seedCategories(),
}

func seedCategories() Migration {
	rows := make([]string, len(DefaultCategories))
	for i, category := range DefaultCategories {
		rows[i] = fmt.Sprintf("('%s', '%s')", category.ID, category.Nome)
	}
	stmt := "INSERT INTO categorias (id, nome) VALUES " + strings.Join(rows, ", ")
	return Migration{Name: "0006_seed_categorias", MySQL: []string{stmt}, SQLite: []string{stmt}}
}

const trackingTable = "migrations"

func ensureTrackingTable(ctx context.Context, db *DB) error {
	var ddl string
	switch db.Dialect {
	case MySQL:
		ddl = `
			CREATE TABLE IF NOT EXISTS migrations (
				name       VARCHAR(255) NOT NULL PRIMARY KEY,
				applied_at DATETIME     NOT NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	case SQLite:
		ddl = `
			CREATE TABLE IF NOT EXISTS migrations (
				name       TEXT     NOT NULL PRIMARY KEY,
				applied_at DATETIME NOT NULL
			)`
	default:
		return fmt.Errorf("unsupported dialect: %s", db.Dialect)
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func appliedMigrations(ctx context.Context, db *DB) (map[string]time.Time, error) {
	rows, err := db.QueryContext(ctx, "SELECT name, applied_at FROM "+trackingTable)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var at time.Time
		if err := rows.Scan(&name, &at); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[name] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migrations: %w", err)
	}
	return applied, nil
}

// Migrate applies every pending migration in order and returns the names it applied.
// It is safe to call on every startup.
func Migrate(ctx context.Context, db *DB, migrations []Migration, logger *zap.SugaredLogger) ([]string, error) {
	if err := validateOrder(migrations); err != nil {
		return nil, axonErrors.WrapStorageError("validate migrations", err)
	}
	if err := ensureTrackingTable(ctx, db); err != nil {
		return nil, axonErrors.WrapStorageError("create migrations table", err)
	}
	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, axonErrors.WrapStorageError("read migrations", err)
	}

	var ran []string
	for _, migration := range migrations {
		if _, ok := applied[migration.Name]; ok {
			continue
		}
		logger.Infow("applying migration", "name", migration.Name)
		if err := runMigration(ctx, db, migration); err != nil {
			return ran, axonErrors.WrapStorageError("apply migration "+migration.Name, err)
		}
		ran = append(ran, migration.Name)
	}

	if len(ran) == 0 {
		logger.Infow("no pending migrations")
	}
	return ran, nil
}

// runMigration executes a migration and records it in the same transaction.
// MySQL commits DDL implicitly, so only the sqlite path is fully atomic.
func runMigration(ctx context.Context, db *DB, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range migration.statements(db.Dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+trackingTable+" (name, applied_at) VALUES (?, ?)",
		migration.Name, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// Status lists every known migration and whether it was applied
func Status(ctx context.Context, db *DB, migrations []Migration) ([]MigrationStatus, error) {
	if err := ensureTrackingTable(ctx, db); err != nil {
		return nil, axonErrors.WrapStorageError("create migrations table", err)
	}
	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, axonErrors.WrapStorageError("read migrations", err)
	}

	statuses := make([]MigrationStatus, len(migrations))
	for i, migration := range migrations {
		at, ok := applied[migration.Name]
		statuses[i] = MigrationStatus{Name: migration.Name, Applied: ok, AppliedAt: at}
	}
	return statuses, nil
}

func validateOrder(migrations []Migration) error {
	var prev string
	for _, migration := range migrations {
		if migration.Name <= prev {
			return fmt.Errorf("migrations out of order: %q must come after %q", migration.Name, prev)
		}
		prev = migration.Name
	}
	return nil
}
