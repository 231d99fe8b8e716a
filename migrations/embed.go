// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, server bootstrap and the admin CLI.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

// Tables lists the tables the migrations create, in creation order.
var Tables = []string{"users", "trips", "rest_stops", "log_sheets", "duty_statuses"}

// NewProvider returns a goose provider for the embedded migrations against db.
// db must be opened with the "pgx" database/sql driver.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migrations.NewProvider: %w", err)
	}
	return p, nil
}
