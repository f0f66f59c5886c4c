package agent

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Cache is the key/value backend of the session and history stores.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
}

type cacheEntry[S any] struct {
	val     S
	touched time.Time
}

// MemoryCache keeps entries in process. With a TTL, entries not read or
// written for longer than the TTL are dropped lazily.
type MemoryCache[S any] struct {
	mu  sync.Mutex
	m   map[string]cacheEntry[S]
	ttl time.Duration
	now func() time.Time
}

type CacheOption func(*memoryCacheOptions)

type memoryCacheOptions struct {
	ttl time.Duration
	now func() time.Time
}

// WithIdleTTL expires entries idle for longer than ttl.
func WithIdleTTL(ttl time.Duration) CacheOption {
	return func(o *memoryCacheOptions) {
		o.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(o *memoryCacheOptions) {
		o.now = now
	}
}

func NewMemoryCache[S any](opts ...CacheOption) *MemoryCache[S] {
	o := memoryCacheOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryCache[S]{m: map[string]cacheEntry[S]{}, ttl: o.ttl, now: o.now}
}

// live returns the entry for key, evicting it when it has expired. The
// caller holds mu.
func (m *MemoryCache[S]) live(key string, now time.Time) (cacheEntry[S], bool) {
	e, ok := m.m[key]
	if !ok {
		return e, false
	}
	if m.ttl > 0 && now.Sub(e.touched) > m.ttl {
		delete(m.m, key)
		return e, false
	}
	return e, true
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = cacheEntry[S]{val: val, touched: m.now()}
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e, ok := m.live(key, now)
	if !ok {
		var zero S
		return zero, false, nil
	}
	e.touched = now
	m.m[key] = e
	return e.val, true, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(key, m.now())
	return ok, nil
}

// Keys returns the live keys in lexical order.
func (m *MemoryCache[S]) Keys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	keys := make([]string, 0, len(m.m))
	for k := range m.m {
		if _, ok := m.live(k, now); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
