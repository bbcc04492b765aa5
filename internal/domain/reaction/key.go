package reaction

import (
	"context"
	"sync"
)

// Key is the canonical SMILES of a template's unique product on the probe.
type Key string

func (k Key) String() string { return string(k) }

// KeyCache memoises reaction keys by probe and pattern.
type KeyCache interface {
	// Lookup returns the cached key and true, or false on a miss.
	Lookup(ctx context.Context, probe, pattern string) (Key, bool, error)
	Store(ctx context.Context, probe, pattern string, key Key) error
}

// CacheFingerprint joins probe and pattern into a cache key.
func CacheFingerprint(probe, pattern string) string {
	return probe + "|" + pattern
}

// MemoryKeyCache is a process-local KeyCache.
type MemoryKeyCache struct {
	mu   sync.RWMutex
	keys map[string]Key
}

// NewMemoryKeyCache returns an empty cache.
func NewMemoryKeyCache() *MemoryKeyCache {
	return &MemoryKeyCache{keys: make(map[string]Key)}
}

func (c *MemoryKeyCache) Lookup(_ context.Context, probe, pattern string) (Key, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.keys[CacheFingerprint(probe, pattern)]
	return k, ok, nil
}

func (c *MemoryKeyCache) Store(_ context.Context, probe, pattern string, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[CacheFingerprint(probe, pattern)] = key
	return nil
}

// Len returns the number of cached keys.
func (c *MemoryKeyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// NopKeyCache never hits.
type NopKeyCache struct{}

func (NopKeyCache) Lookup(context.Context, string, string) (Key, bool, error) { return "", false, nil }
func (NopKeyCache) Store(context.Context, string, string, Key) error          { return nil }

//Personal.AI order the ending
