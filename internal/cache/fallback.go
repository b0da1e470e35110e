package cache

import (
	"context"
	"sync"
	"time"
)

type fallbackEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// FallbackCache is the in-process copy served while redis is unavailable.
type FallbackCache[V any] struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]fallbackEntry[V]
	maxSize int
}

func NewFallbackCache[V any](maxSize int) *FallbackCache[V] {
	return &FallbackCache[V]{
		now:     time.Now,
		entries: make(map[string]fallbackEntry[V]),
		maxSize: maxSize,
	}
}

func (fc *FallbackCache[V]) Get(key string) (V, bool) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	entry, ok := fc.entries[key]
	if !ok || fc.now().After(entry.expiresAt) {
		var zero V
		return zero, false
	}

	return entry.value, true
}

func (fc *FallbackCache[V]) Set(key string, value V, ttl time.Duration) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if _, exists := fc.entries[key]; !exists && len(fc.entries) >= fc.maxSize {
		fc.evictOldest()
	}

	fc.entries[key] = fallbackEntry[V]{
		value:     value,
		expiresAt: fc.now().Add(ttl),
	}
}

func (fc *FallbackCache[V]) Delete(key string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.entries, key)
}

func (fc *FallbackCache[V]) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.entries)
}

func (fc *FallbackCache[V]) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range fc.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expiresAt
		}
	}

	if oldestKey != "" {
		delete(fc.entries, oldestKey)
	}
}

// Sweep drops expired entries and returns how many were removed.
func (fc *FallbackCache[V]) Sweep() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	removed := 0
	now := fc.now()
	for key, entry := range fc.entries {
		if now.After(entry.expiresAt) {
			delete(fc.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done.
func (fc *FallbackCache[V]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fc.Sweep()
		}
	}
}
