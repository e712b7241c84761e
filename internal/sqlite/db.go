package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/rpggio/recordkeep/internal/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: serializes writers and keeps ":memory:" databases
	// from fanning out into separate empty databases per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}

// RunMigrations applies the embedded schema migrations.
func (db *DB) RunMigrations(ctx context.Context, logger *slog.Logger) error {
	if err := migrate.Up(ctx, db.DB, migrations, "sqlite3", logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := migrate.Version(ctx, db.DB, migrations, "sqlite3")
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if logger != nil {
		logger.Info("database schema ready", "driver", "sqlite", "version", version)
	}
	return nil
}
