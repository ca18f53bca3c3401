// Package cache memoizes extraction and analysis results. The in-memory arena
// is the authoritative per-process tier; remote tiers are best-effort.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the typed contract the orchestrator and analyzer depend on.
// Implementations must be safe for concurrent use.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
	Delete(ctx context.Context, key string)
}

// Options configures a Memory cache.
type Options struct {
	// TTL is the lifetime of each entry. Default: 1h.
	TTL time.Duration
	// Capacity bounds the number of live entries. Default: 10000.
	Capacity int
	// SweepInterval controls how often expired entries are purged. Zero
	// disables the background sweeper; expired entries are still never served.
	SweepInterval time.Duration
}

func (o *Options) defaults() {
	if o.TTL <= 0 {
		o.TTL = time.Hour
	}
	if o.Capacity <= 0 {
		o.Capacity = 10000
	}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a fixed-capacity map with per-entry TTL guarded by a RWMutex.
// Entries are replaced wholesale on Set and never mutated in place.
type Memory[V any] struct {
	opts    Options
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMemory creates a Memory cache and starts its sweeper when
// opts.SweepInterval is positive. Call Close to stop the sweeper.
func NewMemory[V any](opts Options) *Memory[V] {
	opts.defaults()
	m := &Memory[V]{
		opts:    opts,
		entries: make(map[string]entry[V]),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go m.sweepLoop(opts.SweepInterval)
	} else {
		close(m.done)
	}
	return m
}

// Get returns the live value stored under key.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok || !m.now().Before(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the configured TTL. When the cache is full
// expired entries are purged first, then the entry closest to expiry is evicted.
func (m *Memory[V]) Set(_ context.Context, key string, value V) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.opts.Capacity {
		m.purgeLocked(now)
		if len(m.entries) >= m.opts.Capacity {
			m.evictOldestLocked()
		}
	}
	m.entries[key] = entry[V]{value: value, expiresAt: now.Add(m.opts.TTL)}
}

// Delete removes key. Deleting a missing key is a no-op.
func (m *Memory[V]) Delete(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Len returns the number of stored entries, including ones that have expired
// but not yet been swept.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep removes expired entries and returns how many were purged.
func (m *Memory[V]) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purgeLocked(now)
}

// Close stops the background sweeper. It is safe to call more than once.
func (m *Memory[V]) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

func (m *Memory[V]) purgeLocked(now time.Time) int {
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

func (m *Memory[V]) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range m.entries {
		if !found || e.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(m.entries, oldestKey)
	}
}

func (m *Memory[V]) sweepLoop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
