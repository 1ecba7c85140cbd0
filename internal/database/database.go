// Package database opens the SQL connection and keeps the schema up to date
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/toyz/receitas/internal/config"
	axonErrors "github.com/toyz/receitas/internal/errors"
)

// Dialect selects the SQL flavour used by migrations
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// DB is a connection pool together with its dialect
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DSN builds the driver data source name for cfg
func DSN(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if Dialect(cfg.Driver) == SQLite {
		return cfg.Name + ".db"
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to the configured database, retrying the initial ping with exponential backoff.
// It gives up after cfg.ConnectAttempts failures or when ctx is cancelled.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.SugaredLogger) (*DB, error) {
	dialect := Dialect(cfg.Driver)
	if dialect != MySQL && dialect != SQLite {
		return nil, axonErrors.NewConfigurationError("DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.Driver))
	}

	pool, err := sql.Open(string(dialect), DSN(cfg))
	if err != nil {
		return nil, axonErrors.WrapStorageError("open database", err)
	}

	if dialect == SQLite {
		// an in-memory database lives only as long as its connection
		pool.SetMaxOpenConns(1)
		pool.SetConnMaxLifetime(0)
	} else {
		pool.SetMaxOpenConns(10)
		pool.SetMaxIdleConns(10)
		pool.SetConnMaxLifetime(3 * time.Minute)
	}

	attempts := max(cfg.ConnectAttempts, 1)
	backoff := cfg.InitialBackoff
	factor := cfg.BackoffFactor
	if factor < 1 {
		factor = 1
	}

	for attempt := 1; ; attempt++ {
		err = pool.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt >= attempts {
			_ = pool.Close()
			return nil, axonErrors.WrapStorageError("connect to database", err).
				WithContext("attempts", attempts).
				WithContext("driver", cfg.Driver)
		}

		logger.Warnw("database not ready, retrying",
			"attempt", attempt,
			"maxAttempts", attempts,
			"retryIn", backoff,
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = pool.Close()
			return nil, axonErrors.WrapStorageError("connect to database", ctx.Err())
		case <-timer.C:
		}
		backoff = time.Duration(float64(backoff) * factor)
	}

	if dialect == SQLite {
		if _, err := pool.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = pool.Close()
			return nil, axonErrors.WrapStorageError("enable foreign keys", err)
		}
	}

	logger.Infow("database connected", "driver", cfg.Driver)
	return &DB{DB: pool, Dialect: dialect}, nil
}
