package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aman-churiwal/tutor-gateway/internal/config"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStoreMemory(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "memory"}}

	stores, err := openStore(cfg)
	require.NoError(t, err)
	assert.Nil(t, stores.postgres)
	assert.NoError(t, stores.store.Ping(context.Background()))

	assert.NoError(t, stores.openRedis(cfg.Redis))
	assert.Nil(t, stores.redis)
	assert.NoError(t, stores.migrate())
	assert.NoError(t, stores.close())
}

func TestSeedStoreBuiltInContent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, seedStore(ctx, store, ""))

	count, err := store.CountLessons(ctx)
	require.NoError(t, err)
	assert.Positive(t, count)

	// second run is skipped
	require.NoError(t, seedStore(ctx, store, ""))
	again, err := store.CountLessons(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, again)
}

func TestSeedStoreMissingFile(t *testing.T) {
	err := seedStore(context.Background(), memory.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
