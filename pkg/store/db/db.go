// Package db selects a store.Driver from configuration.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"scriptura/pkg/config"
	"scriptura/pkg/store"
	"scriptura/pkg/store/db/mysql"
	"scriptura/pkg/store/db/postgres"
	"scriptura/pkg/store/db/sqlite"
)

// Open returns the driver named by cfg. The "memory" driver serves the
// built-in sample fixture; with seed set, SQL databases get the schema and the
// same fixture (local demos only).
func Open(ctx context.Context, cfg config.StoreConfig, seed bool) (store.Driver, error) {
	slog.Info("Opening scripture store", "driver", cfg.Driver)

	switch cfg.Driver {
	case "memory":
		return store.NewMemoryDriver(store.SampleFixture()), nil
	case "postgres":
		d, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return seedIfAsked(ctx, d, seed)
	case "mysql":
		d, err := mysql.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return seedIfAsked(ctx, d, seed)
	case "sqlite":
		d, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return seedIfAsked(ctx, d, seed)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

type seedable interface {
	store.Driver
	EnsureTables(ctx context.Context) error
	Load(ctx context.Context, f *store.Fixture) error
}

func seedIfAsked(ctx context.Context, d seedable, seed bool) (store.Driver, error) {
	if !seed {
		return d, nil
	}
	if err := d.EnsureTables(ctx); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.Load(ctx, store.SampleFixture()); err != nil {
		d.Close()
		return nil, fmt.Errorf("seed sample data: %w", err)
	}
	slog.Info("Seeded sample scripture data")
	return d, nil
}
