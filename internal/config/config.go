// Package config reads service settings from the environment, optionally
// primed from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8000"
	defaultDatabaseName   = "smiley_store"
	defaultMigrationsPath = "file://migrations"
)

type Config struct {
	Port string

	// DatabaseURL selects the store backend by scheme. Empty means degraded
	// mode.
	DatabaseURL  string
	DatabaseName string

	KafkaBrokers []string
	OTLPEndpoint string

	LogLevel           slog.Level
	CORSAllowedOrigins []string
	MigrationsPath     string
}

// Load reads envFile if it exists, then the process environment. Variables
// already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getenv("PORT", defaultPort),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DatabaseName:       getenv("DATABASE_NAME", defaultDatabaseName),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:           level,
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		MigrationsPath:     getenv("MIGRATIONS_PATH", defaultMigrationsPath),
	}

	return cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty is info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
