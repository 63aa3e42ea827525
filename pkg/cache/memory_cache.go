package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/curricula-dev/curricula/pkg/core"
)

// MemoryCache implements an in-memory score cache with LRU eviction.
type MemoryCache struct {
	config  Config
	mu      sync.Mutex
	entries map[string]*memoryCacheEntry
	lruList *lruList
	stats   Stats
}

type memoryCacheEntry struct {
	key     string
	score   core.DifficultyScore
	element *lruElement
}

// LRU list implementation.
type lruElement struct {
	key  string
	prev *lruElement
	next *lruElement
}

type lruList struct {
	head *lruElement
	tail *lruElement
	size int
}

func newLRUList() *lruList {
	head := &lruElement{}
	tail := &lruElement{}
	head.next = tail
	tail.prev = head
	return &lruList{head: head, tail: tail}
}

func (l *lruList) moveToFront(elem *lruElement) {
	if elem.prev == l.head {
		return // Already at front
	}
	// Remove from current position
	elem.prev.next = elem.next
	elem.next.prev = elem.prev
	// Insert at front
	elem.prev = l.head
	elem.next = l.head.next
	l.head.next.prev = elem
	l.head.next = elem
}

func (l *lruList) pushFront(key string) *lruElement {
	elem := &lruElement{key: key}
	elem.prev = l.head
	elem.next = l.head.next
	l.head.next.prev = elem
	l.head.next = elem
	l.size++
	return elem
}

func (l *lruList) removeElement(elem *lruElement) {
	elem.prev.next = elem.next
	elem.next.prev = elem.prev
	l.size--
}

func (l *lruList) back() *lruElement {
	if l.tail.prev == l.head {
		return nil
	}
	return l.tail.prev
}

// NewMemoryCache creates a new in-memory score cache.
func NewMemoryCache(config Config) (*MemoryCache, error) {
	return &MemoryCache{
		config:  config,
		entries: make(map[string]*memoryCacheEntry),
		lruList: newLRUList(),
		stats: Stats{
			MaxEntries: config.MaxEntries,
		},
	}, nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) (core.DifficultyScore, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		atomic.AddInt64(&c.stats.Misses, 1)
		return core.DifficultyScore{}, false, nil
	}

	// Move to front of LRU list
	c.lruList.moveToFront(entry.element)

	atomic.AddInt64(&c.stats.Hits, 1)
	c.stats.LastAccess = time.Now() // Safe: protected by c.mu

	return entry.score, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, score core.DifficultyScore) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.entries[key]; exists {
		existing.score = score
		c.lruList.moveToFront(existing.element)
	} else {
		// Evict from the back when full
		if c.config.MaxEntries > 0 && int64(c.lruList.size) >= c.config.MaxEntries {
			if elem := c.lruList.back(); elem != nil {
				delete(c.entries, elem.key)
				c.lruList.removeElement(elem)
			}
		}

		element := c.lruList.pushFront(key)
		c.entries[key] = &memoryCacheEntry{
			key:     key,
			score:   score,
			element: element,
		}
	}

	atomic.AddInt64(&c.stats.Sets, 1)
	c.stats.LastAccess = time.Now() // Safe: protected by c.mu

	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*memoryCacheEntry)
	c.lruList = newLRUList()

	// Reset stats
	atomic.StoreInt64(&c.stats.Hits, 0)
	atomic.StoreInt64(&c.stats.Misses, 0)
	atomic.StoreInt64(&c.stats.Sets, 0)

	return nil
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	lastAccess := c.stats.LastAccess
	entries := int64(c.lruList.size)
	c.mu.Unlock()

	return Stats{
		Hits:       atomic.LoadInt64(&c.stats.Hits),
		Misses:     atomic.LoadInt64(&c.stats.Misses),
		Sets:       atomic.LoadInt64(&c.stats.Sets),
		Entries:    entries,
		MaxEntries: c.config.MaxEntries,
		LastAccess: lastAccess,
	}
}

func (c *MemoryCache) Close() error {
	return nil
}
