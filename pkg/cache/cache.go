package cache

import (
	"context"
	"time"

	"github.com/curricula-dev/curricula/pkg/core"
)

// ScoreCache stores difficulty scores keyed by (trajectory, window, agent
// subset). Trajectories are immutable, so entries never go stale; caches
// only evict for capacity.
type ScoreCache interface {
	// Get retrieves a cached score by key.
	Get(ctx context.Context, key string) (core.DifficultyScore, bool, error)

	// Set stores a score under the given key.
	Set(ctx context.Context, key string, score core.DifficultyScore) error

	// Clear removes all cached scores.
	Clear(ctx context.Context) error

	// Stats returns cache statistics.
	Stats() Stats

	// Close releases any resources held by the cache.
	Close() error
}

// Stats contains cache performance statistics.
type Stats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Sets       int64     `json:"sets"`
	Entries    int64     `json:"entries"`
	MaxEntries int64     `json:"max_entries"`
	LastAccess time.Time `json:"last_access"`
}

// Config holds cache configuration.
type Config struct {
	// Type of cache: "memory" or "sqlite"
	Type string `json:"type" yaml:"type"`

	// Maximum number of entries (0 = unlimited); memory cache only
	MaxEntries int64 `json:"max_entries" yaml:"max_entries"`

	// Path to the SQLite database file; sqlite cache only
	Path string `json:"path" yaml:"path"`
}

// New creates a cache instance based on the configuration.
func New(config Config) (ScoreCache, error) {
	switch config.Type {
	case "sqlite":
		return NewSQLiteCache(config)
	case "memory":
		return NewMemoryCache(config)
	default:
		// Default to memory cache
		return NewMemoryCache(config)
	}
}
