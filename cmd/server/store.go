package main

import (
	"context"
	"fmt"
	"io"

	"tangled.org/pulse.social/pulse/internal/config"
	"tangled.org/pulse.social/pulse/internal/kv"
	"tangled.org/pulse.social/pulse/internal/kv/boltstore"
	"tangled.org/pulse.social/pulse/internal/kv/redisstore"
	"tangled.org/pulse.social/pulse/internal/kv/sqlitestore"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore opens the configured key-value backend. The returned closer
// releases it.
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, io.Closer, error) {
	switch cfg.Store.Kind {
	case config.StoreBolt:
		store, err := boltstore.Open(boltstore.Options{Path: cfg.Store.Path})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		return store, store, nil
	case config.StoreSQLite:
		store, err := sqlitestore.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, store, nil
	case config.StoreRedis:
		store, err := redisstore.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		return store, store, nil
	case config.StoreMemory:
		return kv.NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, &config.Error{Field: "store.kind", Message: fmt.Sprintf("unknown store %q", cfg.Store.Kind)}
	}
}

// storedKeyCount returns the backend's key counter, or nil if it has none.
func storedKeyCount(store kv.Store) func() int {
	counter, ok := store.(kv.Counter)
	if !ok {
		return nil
	}
	return counter.Count
}
