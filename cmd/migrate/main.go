package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/joao-fontenele/storefront/internal/config"
	"github.com/joao-fontenele/storefront/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	if flag.NArg() != 1 {
		logger.Error("usage: migrate [-env file] <up|down|version>")
		os.Exit(2)
	}

	if err := run(logger, *envFile, flag.Arg(0)); err != nil {
		logger.Error("migrate failed", slog.String("command", flag.Arg(0)), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, envFile, command string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !isPostgresURL(cfg.DatabaseURL) {
		return errors.New("DATABASE_URL must be a postgres:// connection string")
	}

	if command == "up" {
		if err := store.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("documents schema is up to date", slog.String("source", cfg.MigrationsPath))
		return nil
	}

	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch command {
	case "down":
		err := m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("nothing to roll back")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("rolled back one migration")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("schema has no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}
