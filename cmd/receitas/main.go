package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/toyz/receitas/internal/app"
	"github.com/toyz/receitas/internal/config"
	"github.com/toyz/receitas/internal/database"
	"github.com/toyz/receitas/internal/logging"
)

const name = "receitas"

// overridden during build with ldflags
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Recipe catalog API",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("RECEITAS_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "adapter",
				Usage:   fmt.Sprintf("HTTP adapter (supported values: %v)", config.Adapters),
				Sources: cli.EnvVars("HTTP_ADAPTER"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port to listen on",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Apply pending migrations and serve the API (default)",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Apply pending database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "status", Usage: "List migrations without applying them"},
				},
				Action: migrate,
			},
			{
				Name:   "routes",
				Usage:  "Print the route table without opening the database",
				Action: routes,
			},
		},
	}
}

// loadConfig reads the file and environment, then applies the global flags on top
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("adapter") {
		cfg.Server.Adapter = cmd.String("adapter")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, func(), error) {
	return logging.New(
		logging.WithLevel(cfg.Log.Level),
		logging.WithEncoding(cfg.Log.Encoding),
		logging.WithFilename(cfg.Log.File),
		logging.WithServiceName(name),
	)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, sync, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer sync()

	api, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer api.Close()

	app.PrintRoutes(cmd.Root().Writer, api.Dispatcher.Routes().GetAllRoutes())
	return api.Run(ctx)
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, sync, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer sync()

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("status") {
		statuses, err := database.Status(ctx, db, database.Migrations)
		if err != nil {
			return err
		}
		printStatus(cmd.Root().Writer, statuses)
		return nil
	}

	applied, err := database.Migrate(ctx, db, database.Migrations, logger)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.Root().Writer, "database is up to date")
		return nil
	}
	for _, migration := range applied {
		fmt.Fprintf(cmd.Root().Writer, "%s %s\n", color.GreenString("applied"), migration)
	}
	return nil
}

func routes(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the route table does not sign tokens, but the authenticator refuses an empty secret
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "routes"
	}

	authenticator, err := app.NewAuthenticator(cfg.JWT)
	if err != nil {
		return err
	}
	dispatcher, err := app.NewDispatcher(cfg, logging.Nop(), nil, authenticator, nil, nil)
	if err != nil {
		return err
	}
	if _, err := dispatcher.Compile(); err != nil {
		return err
	}
	app.PrintRoutes(cmd.Root().Writer, dispatcher.Routes().GetAllRoutes())
	return nil
}

func printStatus(w io.Writer, statuses []database.MigrationStatus) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, status := range statuses {
		state := color.YellowString("pending")
		applied := "-"
		if status.Applied {
			state = color.GreenString("applied")
			applied = status.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", status.Name, state, applied)
	}
	_ = tw.Flush()
}
