// Package app wires configuration, storage, controllers and middleware into a runnable server
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/toyz/receitas/internal/auth"
	"github.com/toyz/receitas/internal/categories"
	"github.com/toyz/receitas/internal/config"
	"github.com/toyz/receitas/internal/database"
	axonErrors "github.com/toyz/receitas/internal/errors"
	"github.com/toyz/receitas/internal/middleware"
	"github.com/toyz/receitas/internal/recipes"
	"github.com/toyz/receitas/internal/users"
	"github.com/toyz/receitas/pkg/axon"
	"github.com/toyz/receitas/pkg/axon/adapters"
	tokens "github.com/toyz/receitas/pkg/axon/auth"
)

// MetricsNamespace prefixes every Prometheus metric of the API
const MetricsNamespace = "receitas"

// App is a fully wired API ready to Run
type App struct {
	Config     *config.Config
	Logger     *zap.SugaredLogger
	DB         *database.DB
	Web        axon.WebServerInterface
	Dispatcher *axon.Dispatcher
	Metrics    *middleware.Metrics
}

// NewWebServer returns the adapter registered under name
func NewWebServer(name string) (axon.WebServerInterface, error) {
	switch name {
	case "gin":
		return adapters.NewDefaultGinAdapter(), nil
	case "echo":
		return adapters.NewDefaultEchoAdapter(), nil
	case "fiber":
		return adapters.NewDefaultFiberAdapter(), nil
	case "mux":
		return adapters.NewDefaultMuxAdapter(), nil
	}
	return nil, axonErrors.NewConfigurationError("HTTP_ADAPTER", fmt.Sprintf("unknown adapter %q", name)).
		WithSuggestions(fmt.Sprintf("use one of %v", config.Adapters))
}

// NewAuthenticator builds the token authenticator from the JWT settings
func NewAuthenticator(cfg config.JWTConfig) (*tokens.Authenticator, error) {
	authenticator, err := tokens.New(tokens.Config{
		Secret:     cfg.Secret,
		AccessTTL:  cfg.ExpiresIn,
		RefreshTTL: cfg.RecoveryExpiresIn,
		Issuer:     cfg.Issuer,
	})
	if err != nil {
		return nil, axonErrors.WrapConfigurationError("JWT_SECRET", "load", err)
	}
	return authenticator, nil
}

// Controllers builds every controller over db. The repositories only touch db when
// a request is served, so a nil db is enough to describe the routes.
func Controllers(db *sql.DB, authenticator *tokens.Authenticator, cfg *config.Config) []axon.Controller {
	userRepo := users.NewSQLRepository(db)
	categoryRepo := categories.NewSQLRepository(db)

	return []axon.Controller{
		NewHealthController(db, cfg.Server.Adapter),
		auth.NewController(auth.NewService(userRepo, authenticator, cfg.JWT.RecoveryExpiresIn)),
		users.NewController(users.NewService(userRepo)),
		categories.NewController(categoryRepo),
		recipes.NewController(recipes.NewService(recipes.NewSQLRepository(db), categoryRepo)),
	}
}

// NewDispatcher describes the controllers and returns a dispatcher for web.
// web may be nil when the caller only compiles the route table.
func NewDispatcher(cfg *config.Config, logger *zap.SugaredLogger, web axon.WebServerInterface,
	authenticator *tokens.Authenticator, db *sql.DB, observer axon.Observer) (*axon.Dispatcher, error) {
	registry := axon.NewMetadataRegistry()
	if err := axon.Describe(registry, Controllers(db, authenticator, cfg)...); err != nil {
		return nil, err
	}

	opts := []axon.DispatcherOption{axon.WithPrefix(cfg.Server.Prefix), axon.WithLogger(logger)}
	if observer != nil {
		opts = append(opts, axon.WithObserver(observer))
	}
	return axon.NewDispatcher(registry, web, authenticator, opts...), nil
}

// New opens the database, applies pending migrations and registers every route.
// Close releases the database when the App is no longer needed.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	web, err := NewWebServer(cfg.Server.Adapter)
	if err != nil {
		return nil, err
	}
	authenticator, err := NewAuthenticator(cfg.JWT)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if _, err := database.Migrate(ctx, db, database.Migrations, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	app, err := assemble(cfg, logger, web, authenticator, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func assemble(cfg *config.Config, logger *zap.SugaredLogger, web axon.WebServerInterface,
	authenticator *tokens.Authenticator, db *database.DB) (*App, error) {
	app := &App{Config: cfg, Logger: logger, DB: db, Web: web}

	var observer axon.Observer
	if cfg.Metrics.Enabled {
		app.Metrics = middleware.NewMetrics(MetricsNamespace)
		observer = app.Metrics.Observe
	}

	web.SetBodyLimit(cfg.Server.BodyLimit)

	// gin and fiber only apply Use to routes registered afterwards
	web.Use(middleware.NewRequestLogger(logger).Handle)
	web.Use(middleware.NewCORS(cfg.Server.CORSOrigin, cfg.Server.CORSCredentials).Handle)
	web.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, app.Metrics).Handle)
	if app.Metrics != nil {
		web.Use(app.Metrics.InFlight)
	}

	dispatcher, err := NewDispatcher(cfg, logger, web, authenticator, db.DB, observer)
	if err != nil {
		return nil, err
	}
	if err := dispatcher.RegisterAll(); err != nil {
		return nil, err
	}
	app.Dispatcher = dispatcher

	if app.Metrics != nil {
		web.Mount("GET", cfg.Metrics.Path, app.Metrics.Handler())
	}
	return app, nil
}

// Run serves until ctx is cancelled or a termination signal arrives
func (a *App) Run(ctx context.Context) error {
	server := axon.NewServer(a.Web, &axon.ServerConfig{
		Host:            a.Config.Server.Host,
		Port:            strconv.Itoa(a.Config.Server.Port),
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
	}, a.Logger)
	return server.Run(ctx)
}

// Close releases the database
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
