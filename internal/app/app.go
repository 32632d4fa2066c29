// Package app wires configuration into the store and sources shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/source"
	"example.com/eventplanner/internal/storage/memory"
	spg "example.com/eventplanner/internal/storage/postgres"
)

// SourceAll selects every source.
const SourceAll = "all"

// pgStore joins the pool-backed reader with the transactional writer.
type pgStore struct {
	*spg.DB
	*spg.Writer
}

// OpenStore returns the configured event store and a func releasing it.
// The postgres driver applies pending migrations before connecting.
func OpenStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (Store, func(), error) {
	skip := cfg.DedupMode == config.DedupSkip
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store, rows are lost on exit")
		return memory.New(skip), func() {}, nil
	case config.DriverPostgres:
		dsn := cfg.DB.ConnString()
		if err := spg.Migrate(ctx, dsn); err != nil {
			return nil, nil, fmt.Errorf("migration: %w", err)
		}
		log.Info("db: migrations applied")

		db, err := spg.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		log.Info("db: connected", "dsn", cfg.DB.Redacted(), "dedup", cfg.DedupMode)
		return &pgStore{DB: db, Writer: spg.NewWriter(db, skip)}, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StoreDriver)
	}
}

// Sources resolves a source name, or "all", into adapters in run order.
func Sources(name string, cfg *config.Config, opts source.Options) ([]source.Source, error) {
	names := []string{name}
	if name == SourceAll {
		names = source.Names
	}
	out := make([]source.Source, 0, len(names))
	for _, n := range names {
		src, err := source.New(n, cfg, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}
