package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/recordkeep/internal/config"
	"github.com/rpggio/recordkeep/internal/memstore"
	"github.com/rpggio/recordkeep/internal/postgres"
	"github.com/rpggio/recordkeep/internal/repository"
	"github.com/rpggio/recordkeep/internal/sqlite"
)

// keyStore is implemented by the SQL backends.
type keyStore interface {
	repository.PrincipalResolver
	AddAPIKey(ctx context.Context, token, principal, description string) error
}

type backend struct {
	records repository.RecordStore
	keys    keyStore // nil for the memory driver
	closer  func() error
}

func (b *backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// openBackend opens the configured driver and applies its migrations.
func openBackend(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; records are lost on exit")
		return &backend{records: memstore.New()}, nil

	case config.DriverSQLite:
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, logger); err != nil {
			db.Close()
			return nil, err
		}
		return &backend{
			records: sqlite.NewRecordStore(db),
			keys:    sqlite.NewAPIKeyRepository(db),
			closer:  db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.DefaultConfig(cfg.URL))
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, logger); err != nil {
			db.Close()
			return nil, err
		}
		return &backend{
			records: postgres.NewRecordStore(db),
			keys:    postgres.NewAPIKeyRepository(db),
			closer:  db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
