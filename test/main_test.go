package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path"
	"testing"
	"time"

	"github.com/eskrenkovic/tictactoe-go/internal/config"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/tests"
	"github.com/eskrenkovic/tictactoe-go/internal/server"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type IntegrationTestFixture struct {
	addr string
	db   *sql.DB
}

var fixture = IntegrationTestFixture{}

func TestMain(m *testing.M) {
	rootPath := "../"
	if err := os.Setenv(config.RootPathEnv, rootPath); err != nil {
		log.Fatal(err)
	}

	localConfigPath := path.Join(rootPath, "config.local.env")
	if _, err := os.Stat(localConfigPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(localConfigPath, []byte("SKIP_INFRASTRUCTURE=false"), 0o644); err != nil {
				log.Fatal(err)
			}
		}
	}

	if err := godotenv.Load(localConfigPath); err != nil {
		log.Fatal(err)
	}

	if err := godotenv.Load(path.Join(rootPath, "config.env")); err != nil {
		log.Fatal(err)
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conf.Logger = zap.NewNop()

	infrastructure, err := tests.NewLocalTestFixture(path.Join(rootPath, "docker-compose.yml"))
	if err != nil {
		log.Fatal(err)
	}

	if err := infrastructure.Start(); err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := infrastructure.Stop(); err != nil {
			log.Fatal(err)
		}
	}()

	db, err := waitForDatabase(conf.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	fixture.db = db
	fixture.addr = fmt.Sprintf("localhost:%d", conf.Port)

	srv, err := server.New(conf)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal(err)
		}
	}()

	if err := waitForServer(fixture.addr); err != nil {
		log.Fatal(err)
	}

	code := m.Run()

	if err := srv.Stop(); err != nil {
		log.Fatal(err)
	}

	os.Exit(code)
}

func waitForDatabase(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 60; i++ {
		if lastErr = db.Ping(); lastErr == nil {
			return db, nil
		}
		time.Sleep(500 * time.Millisecond)
	}

	return nil, fmt.Errorf("database did not come up: %w", lastErr)
}

func waitForServer(addr string) error {
	var lastErr error
	for i := 0; i < 100; i++ {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			return conn.Close()
		}
		lastErr = err
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("server did not come up: %w", lastErr)
}

// cleanDatabase removes all rows written by a test. Both tables are
// truncated in a single transaction so a failure leaves them consistent.
func cleanDatabase(ctx context.Context) error {
	return core.Tx(ctx, fixture.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM events;"); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, "DELETE FROM users;")
		return err
	})
}
