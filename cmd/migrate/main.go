package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lumina-app/lumina-import-go/internal/config"
	"github.com/lumina-app/lumina-import-go/internal/store"
	"github.com/lumina-app/lumina-import-go/internal/util"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id              SERIAL PRIMARY KEY,
	name            TEXT NOT NULL UNIQUE,
	intro           TEXT,
	accomplishments TEXT,
	image_url       TEXT,
	tags            TEXT[] NOT NULL DEFAULT '{}',
	birth_year      INTEGER,
	created_by      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_profiles_birth_year ON profiles (birth_year);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	postgres, err := store.NewPostgresService(store.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer postgres.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := postgres.GetDB().ExecContext(ctx, schema); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	logger.Info("Profiles schema is up to date")
}
