package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/Trangar/zettelkasten/internal/app"
	"github.com/Trangar/zettelkasten/internal/config"
	"github.com/Trangar/zettelkasten/internal/logging"
	"github.com/Trangar/zettelkasten/internal/storage"
	"github.com/Trangar/zettelkasten/internal/storage/memory"
	"github.com/Trangar/zettelkasten/internal/storage/postgres"
	"github.com/Trangar/zettelkasten/internal/storage/sqlite"
)

var log = logging.New("main")

func loadConfig(cmd *cli.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		cfg = config.Default()
	case err != nil:
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	if backend := cmd.String("backend"); backend != "" {
		cfg.Backend = strings.ToLower(backend)
	} else if isPostgresURL(cmd.String("database")) {
		cfg.Backend = config.BackendPostgres
	}
	if url := cmd.String("database"); url != "" {
		cfg.DatabaseURL = url
	}
	if logFile := cmd.String("log-file"); logFile != "" {
		cfg.LogFile = logFile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	dsn, err := cfg.ResolveDatabaseURL("")
	if err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case config.BackendSQLite:
		log.Info("opening sqlite database", "path", dsn)
		db, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendPostgres:
		log.Info("opening postgres database")
		db, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendMemory:
		log.Warn("using in-memory storage, nothing will be saved")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logging.SetLevel(cfg.LogLevel)
	if err := logging.Configure(cfg.LogFile); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", "error", err)
		}
	}()

	sysCfg, err := store.LoadSystemConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load system config: %w", err)
	}

	if err := app.Run(ctx, sysCfg, store, app.WithGlamourStyle(cfg.GlamourStyle)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func initConfig(ctx context.Context, cmd *cli.Command) error {
	exists, err := config.Exists()
	if err != nil {
		return err
	}
	if exists && !cmd.Bool("force") {
		path, _ := config.ConfigPath()
		return fmt.Errorf("config already exists at %s, use --force to overwrite", path)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	path, _ := config.ConfigPath()
	fmt.Fprintf(cmd.Root().Writer, "wrote %s (backend %s)\n", path, cfg.Backend)
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "zettelkasten",
		Usage:  "Browse and edit a zettelkasten from the terminal",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default ~/.zettelkasten/config.json)",
				Sources: cli.EnvVars("ZETTELKASTEN_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "Database file or URL",
				Sources: cli.EnvVars("ZETTELKASTEN_DATABASE_URL", "DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: sqlite, postgres or memory",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Write logs to this file instead of stderr",
				Sources: cli.EnvVars("ZETTELKASTEN_LOG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the config file from the given flags",
				Action: initConfig,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
