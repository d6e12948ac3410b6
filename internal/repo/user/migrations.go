package user

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations for the given dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	var dir string

	switch dialect {
	case goose.DialectSQLite3:
		dir = "migrations/sqlite"
	case goose.DialectPostgres:
		dir = "migrations/postgres"
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, dialect)
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("new migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
