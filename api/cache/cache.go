// Package cache memoizes fetched values for the lifetime of a session.
//
// Entries always live in memory. When a directory is configured they are
// also written as gob files so a later invocation can reuse them until the
// TTL expires.
package cache

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// DefaultTTL is the default time-to-live for cached entries
	DefaultTTL = 24 * time.Hour

	// DefaultDir is the on-disk cache root used by New. Empty means memory only.
	DefaultDir string
)

// Entry represents a cached item
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
}

// Cache provides a generic caching mechanism
type Cache[T any] struct {
	mu    sync.Mutex
	mem   map[string]Entry[T]
	dir   string
	ttl   time.Duration
	group singleflight.Group
}

// New creates a cache for the given namespace below DefaultDir
func New[T any](namespace string) *Cache[T] {
	dir := ""
	if DefaultDir != "" {
		dir = filepath.Join(DefaultDir, normalizeKey(namespace))
	}
	return NewWithDir[T](dir, DefaultTTL)
}

// NewWithDir creates a cache stored in dir. An empty dir keeps entries in memory only.
func NewWithDir[T any](dir string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		mem: make(map[string]Entry[T]),
		dir: dir,
		ttl: ttl,
	}
}

// normalizeKey converts a cache key into a filesystem-safe format
func normalizeKey(key string) string {
	normalized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' || r == '/' {
			return r
		}
		return '_'
	}, key)

	for strings.Contains(normalized, "..") {
		normalized = strings.ReplaceAll(normalized, "..", ".")
	}
	for strings.Contains(normalized, "//") {
		normalized = strings.ReplaceAll(normalized, "//", "/")
	}

	return strings.Trim(normalized, "/")
}

// GetOrSet retrieves a value from cache or stores it if it doesn't exist.
// Concurrent callers asking for the same key share a single call to fn.
func (c *Cache[T]) GetOrSet(key string, fn func() (T, error), forceUpdate bool) (T, error) {
	return c.GetOrSetIf(key, fn, forceUpdate, nil)
}

// GetOrSetIf is GetOrSet but only stores values accepted by keep.
// A nil keep stores every value.
func (c *Cache[T]) GetOrSetIf(key string, fn func() (T, error), forceUpdate bool, keep func(T) bool) (T, error) {
	if !forceUpdate {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := fn()
		if err != nil {
			return value, err
		}
		if keep == nil || keep(value) {
			c.store(key, Entry[T]{Value: value, CreatedAt: time.Now()})
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Len reports the number of entries held in memory
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

func (c *Cache[T]) lookup(key string) (T, bool) {
	c.mu.Lock()
	entry, ok := c.mem[key]
	c.mu.Unlock()
	if ok && c.fresh(entry) {
		return entry.Value, true
	}

	if c.dir != "" {
		if e, err := c.loadEntry(c.path(key)); err == nil && c.fresh(*e) {
			c.mu.Lock()
			c.mem[key] = *e
			c.mu.Unlock()
			return e.Value, true
		}
	}

	var zero T
	return zero, false
}

func (c *Cache[T]) fresh(e Entry[T]) bool {
	return c.ttl <= 0 || time.Since(e.CreatedAt) < c.ttl
}

func (c *Cache[T]) store(key string, entry Entry[T]) {
	c.mu.Lock()
	c.mem[key] = entry
	c.mu.Unlock()

	if c.dir != "" {
		// the in-memory entry is enough for this session
		_ = c.saveEntry(c.path(key), entry)
	}
}

func (c *Cache[T]) path(key string) string {
	return filepath.Join(c.dir, normalizeKey(key)+".gob")
}

func (c *Cache[T]) loadEntry(path string) (*Entry[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entry Entry[T]
	if err := gob.NewDecoder(f).Decode(&entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (c *Cache[T]) saveEntry(path string, entry Entry[T]) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(entry)
}

// Clear removes all cached entries
func (c *Cache[T]) Clear() error {
	c.mu.Lock()
	c.mem = make(map[string]Entry[T])
	c.mu.Unlock()
	if c.dir == "" {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// SetTTL updates the cache TTL
func (c *Cache[T]) SetTTL(d time.Duration) {
	c.ttl = d
}
