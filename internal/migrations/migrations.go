// Package migrations embeds the goose SQL migrations of the three local
// databases and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/pressly/goose/v3"
)

// Set names one group of migrations; each database has its own.
type Set string

const (
	Users  Set = "users"
	Orders Set = "orders"
	Prefs  Set = "prefs"
)

//go:embed users/*.sql orders/*.sql prefs/*.sql
var Migrations embed.FS

// Up applies every pending migration of set to db. Running it again on an
// up-to-date database is a no-op.
func Up(ctx context.Context, db *sql.DB, set Set) error {
	fsys, err := fs.Sub(Migrations, string(set))
	if err != nil {
		return fmt.Errorf("migrations %s: %w", set, err)
	}

	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("migrations %s: provider: %w", set, err)
	}

	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrations %s: up: %w", set, err)
	}
	return nil
}

// Open opens the SQLite database at dsn and brings it up to date with set.
func Open(ctx context.Context, dsn string, set Set) (*sql.DB, error) {
	db, err := dbx.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Up(ctx, db, set); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
