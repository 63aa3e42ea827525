package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/logging"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCache implements ScoreCache using SQLite as storage, persisting
// scores across runs of the same corpus.
type SQLiteCache struct {
	db     *sql.DB
	config Config
	stats  Stats
}

type storedScore struct {
	Value float64            `json:"value"`
	Sub   map[string]float64 `json:"sub,omitempty"`
}

// NewSQLiteCache creates a new SQLite-backed score cache.
func NewSQLiteCache(config Config) (*SQLiteCache, error) {
	if config.Path == "" {
		config.Path = "curricula_scores.db"
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	cache := &SQLiteCache{
		db:     db,
		config: config,
	}

	if err := cache.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	// Pragmas for concurrent sampler workers hitting the cache
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
	}
	logger := logging.GetLogger()
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Log warning but don't fail
			logger.Warn(context.Background(), "failed to set pragma %s: %v", pragma, err)
		}
	}

	cache.loadStats()

	return cache, nil
}

func (c *SQLiteCache) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS score_entries (
		key TEXT PRIMARY KEY,
		score BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		accessed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accessed_at ON score_entries(accessed_at);
	`

	_, err := c.db.Exec(query)
	return err
}

func (c *SQLiteCache) loadStats() {
	var entries int64
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM score_entries`).Scan(&entries); err == nil {
		atomic.StoreInt64(&c.stats.Entries, entries)
	}
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (core.DifficultyScore, bool, error) {
	query := `SELECT score FROM score_entries WHERE key = ?`

	var blob []byte
	err := c.db.QueryRowContext(ctx, query, key).Scan(&blob)
	if err == sql.ErrNoRows {
		atomic.AddInt64(&c.stats.Misses, 1)
		return core.DifficultyScore{}, false, nil
	}
	if err != nil {
		return core.DifficultyScore{}, false, fmt.Errorf("failed to get score entry: %w", err)
	}

	var stored storedScore
	if err := json.Unmarshal(blob, &stored); err != nil {
		return core.DifficultyScore{}, false, fmt.Errorf("failed to decode score entry: %w", err)
	}

	now := time.Now().UnixNano()
	if _, err := c.db.ExecContext(ctx, `UPDATE score_entries SET accessed_at = ? WHERE key = ?`, now, key); err != nil {
		logging.GetLogger().Warn(ctx, "failed to update access time: %v", err)
	}

	atomic.AddInt64(&c.stats.Hits, 1)
	c.stats.LastAccess = time.Now()

	return core.DifficultyScore{Value: stored.Value, Sub: stored.Sub}, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, score core.DifficultyScore) error {
	blob, err := json.Marshal(storedScore{Value: score.Value, Sub: score.Sub})
	if err != nil {
		return fmt.Errorf("failed to encode score entry: %w", err)
	}

	now := time.Now().UnixNano()
	query := `
	INSERT OR REPLACE INTO score_entries (key, score, created_at, accessed_at)
	VALUES (?, ?, ?, ?)
	`

	if _, err := c.db.ExecContext(ctx, query, key, blob, now, now); err != nil {
		return fmt.Errorf("failed to set score entry: %w", err)
	}

	atomic.AddInt64(&c.stats.Sets, 1)
	c.loadStats()
	c.stats.LastAccess = time.Now()

	return nil
}

func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM score_entries`); err != nil {
		return fmt.Errorf("failed to clear score entries: %w", err)
	}

	atomic.StoreInt64(&c.stats.Hits, 0)
	atomic.StoreInt64(&c.stats.Misses, 0)
	atomic.StoreInt64(&c.stats.Sets, 0)
	atomic.StoreInt64(&c.stats.Entries, 0)

	return nil
}

func (c *SQLiteCache) Stats() Stats {
	return Stats{
		Hits:       atomic.LoadInt64(&c.stats.Hits),
		Misses:     atomic.LoadInt64(&c.stats.Misses),
		Sets:       atomic.LoadInt64(&c.stats.Sets),
		Entries:    atomic.LoadInt64(&c.stats.Entries),
		LastAccess: c.stats.LastAccess,
	}
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
