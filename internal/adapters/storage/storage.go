package storage

import (
	"context"
	"fmt"

	"slot-swapper/internal/adapters/storage/memory"
	"slot-swapper/internal/adapters/storage/postgres"
	"slot-swapper/internal/adapters/storage/sqlite"
	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"
	"slot-swapper/internal/platform/config"
)

// Backend es lo que necesitan los services: ambos stores con su TxRunner + usuarios.
type Backend interface {
	events.Store
	swaps.Store
	Users() users.Repository
	Close() error
}

var (
	_ Backend = (*memory.Store)(nil)
	_ Backend = (*postgres.Store)(nil)
	_ Backend = (*sqlite.Store)(nil)
)

// Open elige el adapter según cfg.Driver. En postgres aplica el schema si migrate es true.
func Open(ctx context.Context, cfg config.StorageConfig, migrate bool) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewStore(), nil

	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return st, nil

	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return postgres.NewStore(db), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
