package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	id := uuid.New()

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Key(id, 0, 10, []int{1, 2}), Key(id, 0, 10, []int{1, 2}))
	})

	t.Run("agent order irrelevant", func(t *testing.T) {
		assert.Equal(t, Key(id, 0, 10, []int{2, 1}), Key(id, 0, 10, []int{1, 2}))
	})

	t.Run("window changes key", func(t *testing.T) {
		assert.NotEqual(t, Key(id, 0, 10, []int{1}), Key(id, 0, 11, []int{1}))
		assert.NotEqual(t, Key(id, 0, 10, []int{1}), Key(id, 1, 10, []int{1}))
	})

	t.Run("trajectory changes key", func(t *testing.T) {
		assert.NotEqual(t, Key(uuid.New(), 0, 10, []int{1}), Key(id, 0, 10, []int{1}))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		agents := []int{3, 1, 2}
		Key(id, 0, 10, agents)
		assert.Equal(t, []int{3, 1, 2}, agents)
	})
}

func runScoreCacheSuite(t *testing.T, c ScoreCache) {
	ctx := context.Background()
	key := Key(uuid.New(), 5, 25, []int{0, 1})
	score := core.DifficultyScore{
		Value: 0.42,
		Sub:   map[string]float64{"clearance": 0.3, "horizon": 0.6},
	}

	t.Run("miss then hit", func(t *testing.T) {
		_, found, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, c.Set(ctx, key, score))

		got, found, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, score.Value, got.Value)
		assert.Equal(t, score.Sub, got.Sub)
	})

	t.Run("overwrite", func(t *testing.T) {
		updated := core.DifficultyScore{Value: 0.9}
		require.NoError(t, c.Set(ctx, key, updated))

		got, found, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 0.9, got.Value)
	})

	t.Run("stats", func(t *testing.T) {
		stats := c.Stats()
		assert.Greater(t, stats.Hits, int64(0))
		assert.Greater(t, stats.Misses, int64(0))
		assert.Greater(t, stats.Sets, int64(0))
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, c.Clear(ctx))
		_, found, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(Config{MaxEntries: 100})
	require.NoError(t, err)
	defer c.Close()

	runScoreCacheSuite(t, c)
}

func TestMemoryCacheEviction(t *testing.T) {
	c, err := NewMemoryCache(Config{MaxEntries: 2})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	id := uuid.New()
	k1 := Key(id, 0, 10, []int{0})
	k2 := Key(id, 10, 20, []int{0})
	k3 := Key(id, 20, 30, []int{0})

	require.NoError(t, c.Set(ctx, k1, core.DifficultyScore{Value: 0.1}))
	require.NoError(t, c.Set(ctx, k2, core.DifficultyScore{Value: 0.2}))

	// Touch k1 so k2 becomes the LRU victim.
	_, _, err = c.Get(ctx, k1)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, k3, core.DifficultyScore{Value: 0.3}))

	_, found, _ := c.Get(ctx, k1)
	assert.True(t, found, "recently used entry survives")
	_, found, _ = c.Get(ctx, k2)
	assert.False(t, found, "least recently used entry evicted")
	assert.Equal(t, int64(2), c.Stats().Entries)
}

func TestSQLiteCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	c, err := NewSQLiteCache(Config{Type: "sqlite", Path: path})
	require.NoError(t, err)
	defer c.Close()

	runScoreCacheSuite(t, c)
}

func TestSQLiteCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	ctx := context.Background()
	key := Key(uuid.New(), 0, 50, []int{0, 1, 2})

	first, err := NewSQLiteCache(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, key, core.DifficultyScore{Value: 0.77}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(Config{Path: path})
	require.NoError(t, err)
	defer second.Close()

	got, found, err := second.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0.77, got.Value)
}

func TestNewFactory(t *testing.T) {
	c, err := New(Config{Type: "memory"})
	require.NoError(t, err)
	defer c.Close()
	_, ok := c.(*MemoryCache)
	assert.True(t, ok)

	c2, err := New(Config{})
	require.NoError(t, err)
	defer c2.Close()
	_, ok = c2.(*MemoryCache)
	assert.True(t, ok, "unknown type defaults to memory")
}
