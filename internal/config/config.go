package config

import (
	"errors"
	"fmt"
	"path"

	"github.com/eskrenkovic/tictactoe-go/internal/env"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseURLEnv = "DATABASE_URL"
	RootPathEnv    = "ROOT_PATH"
)

// DefaultPort is the port the server binds to when PORT is not set.
const DefaultPort = 5000

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	MigrationsPath string
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, fmt.Errorf("failed to create logger: %w", err)
	}

	port, err := env.GetIntOrDefault(PortEnv, DefaultPort)
	if err != nil {
		return Config{}, err
	}

	if port < 0 || port > 65535 {
		return Config{}, fmt.Errorf("port out of range: %d", port)
	}

	// DATABASE_URL is optional. When it is missing the server falls back
	// to the in-memory stores instead of Postgres.
	databaseURL, err := env.GetString(DatabaseURLEnv)
	if err != nil && !errors.Is(err, env.ErrNotFound) {
		return Config{}, err
	}

	rootPath := env.GetStringOrDefault(RootPathEnv, ".")
	migrationsPath := path.Join(rootPath, "db", "migrations")

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    databaseURL,
		MigrationsPath: migrationsPath,
	}, nil
}
