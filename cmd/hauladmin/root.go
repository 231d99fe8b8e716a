package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for goose
	"github.com/spf13/cobra"

	"github.com/bridgitkanini/haultrackrbackend/internal/config"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "hauladmin",
	Short: "Administer a HaulTrackr database",
	Long: `Apply schema migrations and manage accounts.

The database is taken from --database-url or, when the flag is empty,
from the DATABASE_URL environment variable.

Examples:
  hauladmin migrate up
  hauladmin migrate status
  hauladmin user create --username trucker --email t@example.com --password 'correct horse'`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (default $DATABASE_URL)")
}

// dsn resolves the connection string from the flag or the environment.
func dsn() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if os.Getenv("DATABASE_URL") == "" {
		return "", fmt.Errorf("no database: set --database-url or DATABASE_URL")
	}
	cfg, err := config.LoadDatabase()
	if err != nil {
		return "", err
	}
	return cfg.DatabaseURL, nil
}

func openSQL(ctx context.Context) (*sql.DB, error) {
	url, err := dsn()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	url, err := dsn()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}
