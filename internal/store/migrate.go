package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

const MigrationSentinelKey = "_migration_complete"

// Keys carried over from the legacy file medium. Anything else in the file
// is left behind on purpose.
var migrationKeys = []string{
	"musicsim_saves",
	"musicsim_statistics",
	"musicsim_careers",
}

// Migrator copies legacy keys from the secondary medium into the primary one
// exactly once. Concurrent Run calls collapse into a single in-flight
// migration; later calls see the sentinel and return immediately.
type Migrator struct {
	from  KV
	to    KV
	log   *slog.Logger
	group singleflight.Group
}

func NewMigrator(from, to KV, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{from: from, to: to, log: logger}
}

func (m *Migrator) Run(ctx context.Context) error {
	_, err, _ := m.group.Do("migrate", func() (any, error) {
		return nil, m.run(ctx)
	})
	return err
}

func (m *Migrator) run(ctx context.Context) error {
	if _, err := m.to.Get(ctx, MigrationSentinelKey); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("read migration sentinel: %w", err)
	}

	copied := 0
	for _, key := range migrationKeys {
		v, err := m.from.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read legacy key %s: %w", key, err)
		}
		// Never clobber data already present in the primary medium.
		if _, err := m.to.Get(ctx, key); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("probe key %s: %w", key, err)
		}
		if err := m.to.Set(ctx, key, v); err != nil {
			return fmt.Errorf("copy key %s: %w", key, err)
		}
		copied++
	}
	if err := m.to.Set(ctx, MigrationSentinelKey, "true"); err != nil {
		return fmt.Errorf("write migration sentinel: %w", err)
	}
	m.log.Info("legacy store migration complete", "keys_copied", copied)
	return nil
}
