// Package migrate applies embedded goose migrations to a SQL backend.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// Dir is the directory inside each backend's embedded FS that holds the
// migration files.
const Dir = "migrations"

// goose keeps its base FS, dialect and logger in package globals.
var mu sync.Mutex

// Up applies every pending migration in fsys to db.
func Up(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string, logger *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	if err := configure(fsys, dialect, logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, Dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Version reports the current schema version of db.
func Version(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string) (int64, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := configure(fsys, dialect, nil); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return version, nil
}

func configure(fsys fs.FS, dialect string, logger *slog.Logger) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	goose.SetLogger(slogAdapter{logger: logger})
	return nil
}

// slogAdapter sends goose output through slog so it never reaches stdout,
// which carries the protocol in stdio mode.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Printf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...), "component", "goose")
}

func (a slogAdapter) Fatalf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...), "component", "goose")
	panic(fmt.Sprintf(format, v...))
}
