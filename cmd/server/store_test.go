package main

import (
	"context"
	"path/filepath"
	"testing"

	"tangled.org/pulse.social/pulse/internal/config"
	"tangled.org/pulse.social/pulse/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{Store: config.StoreConfig{Kind: config.StoreMemory}}},
		{"bolt", config.Config{Store: config.StoreConfig{Kind: config.StoreBolt, Path: filepath.Join(t.TempDir(), "pulse.db")}}},
		{"sqlite", config.Config{Store: config.StoreConfig{Kind: config.StoreSQLite, Path: filepath.Join(t.TempDir(), "pulse.sqlite")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closer, err := openStore(ctx, &tt.cfg)
			require.NoError(t, err)
			defer closer.Close()

			require.NoError(t, store.Set(ctx, "joined_communities", `["seed-photography"]`))
			value, found, err := store.Get(ctx, "joined_communities")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `["seed-photography"]`, value)
		})
	}
}

func TestOpenStore_UnknownKind(t *testing.T) {
	_, _, err := openStore(context.Background(), &config.Config{Store: config.StoreConfig{Kind: "etcd"}})

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "store.kind", cfgErr.Field)
}

func TestOpenStore_BoltDirectoryCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "pulse.db")
	cfg := config.Config{Store: config.StoreConfig{Kind: config.StoreBolt, Path: path}}

	store, closer, err := openStore(context.Background(), &cfg)
	require.NoError(t, err)
	defer closer.Close()
	assert.NotNil(t, store)
	assert.FileExists(t, path)
}

func TestStoredKeyCount(t *testing.T) {
	assert.Nil(t, storedKeyCount(kv.NewMockStore()))

	store, closer, err := openStore(context.Background(), &config.Config{
		Store: config.StoreConfig{Kind: config.StoreBolt, Path: filepath.Join(t.TempDir(), "pulse.db")},
	})
	require.NoError(t, err)
	defer closer.Close()

	require.NoError(t, store.Set(context.Background(), "content_filters", "{}"))
	count := storedKeyCount(store)
	require.NotNil(t, count)
	assert.Equal(t, 1, count())
}
