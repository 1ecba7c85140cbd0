package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/toyz/receitas/internal/config"
	"github.com/toyz/receitas/internal/database"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newRootCmd(&out).Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func TestLoadConfig_FlagsOverrideFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receitas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n  adapter: echo\nlog:\n  level: debug\n"), 0o600))
	t.Setenv("HTTP_ADAPTER", "fiber")

	load := func(args ...string) *config.Config {
		var got *config.Config
		root := newRootCmd(&bytes.Buffer{})
		root.Action = func(ctx context.Context, cmd *cli.Command) error {
			var err error
			got, err = loadConfig(cmd)
			return err
		}
		require.NoError(t, root.Run(context.Background(), append([]string{name}, args...)))
		return got
	}

	cfg := load("--config", path, "--port", "8081")
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "fiber", cfg.Server.Adapter)
	assert.Equal(t, "debug", cfg.Log.Level)

	cfg = load("-c", path, "--adapter", "mux", "--log-level", "warn")
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mux", cfg.Server.Adapter)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "routes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestRoutesCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	out, err := run(t, "routes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "METHOD")
	assert.Regexp(t, `(?m)^GET\s+/api/health\s+HealthController\.Health\s+public`, out)
	assert.Regexp(t, `(?m)^GET\s+/api/categories\s+CategoriesController\.List\s+authenticated`, out)
	assert.Regexp(t, `(?m)^DELETE\s+/api/recipes/\{id\}\s+RecipesController\.Delete\s+ADMIN,DEFAULT`, out)
	assert.Equal(t, "13 routes", lines[len(lines)-1])
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "receitas.db"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "migrate", "--status")
	require.NoError(t, err)
	assert.Equal(t, len(database.Migrations), strings.Count(out, "pending"))

	out, err = run(t, "migrate")
	require.NoError(t, err)
	for _, migration := range database.Migrations {
		assert.Contains(t, out, "applied "+migration.Name)
	}

	out, err = run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "database is up to date\n", out)

	out, err = run(t, "migrate", "--status")
	require.NoError(t, err)
	assert.NotContains(t, out, "pending")
	assert.Equal(t, len(database.Migrations), strings.Count(out, "applied"))
}

func TestServe_InvalidAdapter(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "serve", "--adapter", "chi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_ADAPTER")
}
