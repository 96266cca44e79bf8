// Package cache memoizes lookups of related objects (parent collections,
// governing policies) across document builds. A Cache is owned by the
// embedding process and passed explicitly to every build.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// Store names reported to observers.
const (
	StoreCollections   = "collections"
	StoreAdminPolicies = "admin_policies"
)

// Observer is notified of every lookup.
type Observer interface {
	CacheLookup(store string, hit bool)
}

// Stats reports lookup counters for one store.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Store is a concurrency-safe memo keyed by related-object identifier.
// The first value stored for a key wins; there is no invalidation other
// than Reset. Loader errors are never cached.
type Store[V any] struct {
	name     string
	observer Observer

	mu      sync.RWMutex
	entries map[string]V          // unbounded mode
	bounded *lru.Cache[string, V] // bounded mode, nil when unbounded
	size    int

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// NewStore creates a store. maxEntries <= 0 means unbounded.
func NewStore[V any](name string, maxEntries int, observer Observer) *Store[V] {
	s := &Store[V]{name: name, observer: observer, size: maxEntries}
	s.init()
	return s
}

func (s *Store[V]) init() {
	if s.size > 0 {
		s.bounded, _ = lru.New[string, V](s.size)
		s.entries = nil
		return
	}
	s.entries = make(map[string]V)
}

// Get returns the cached value for key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bounded != nil {
		return s.bounded.Get(key)
	}
	v, ok := s.entries[key]
	return v, ok
}

// Add stores v under key unless a value is already present, and returns
// the value that ends up cached.
func (s *Store[V]) Add(key string, v V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bounded != nil {
		if prev, ok, _ := s.bounded.PeekOrAdd(key, v); ok {
			return prev
		}
		return v
	}
	if prev, ok := s.entries[key]; ok {
		return prev
	}
	s.entries[key] = v
	return v
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Concurrent callers for the same key share one load. The shared
// load is not cancelled with any single caller; each caller stops waiting
// when its own ctx is done.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		s.record(true)
		return v, nil
	}
	s.record(false)

	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		return s.Add(key, v), nil
	})

	var zero V
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *Store[V]) record(hit bool) {
	if hit {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	if s.observer != nil {
		s.observer.CacheLookup(s.name, hit)
	}
}

// Len returns the number of cached entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bounded != nil {
		return s.bounded.Len()
	}
	return len(s.entries)
}

// Reset drops every entry and zeroes the counters.
func (s *Store[V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	s.hits.Store(0)
	s.misses.Store(0)
}

// Stats returns the current counters.
func (s *Store[V]) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Entries: s.Len()}
}

// RelatedObject is the cached projection of a governing policy.
type RelatedObject struct {
	Title  string
	Hydrus bool
}

// Cache groups the related-object stores shared by all builds in a process.
type Cache struct {
	Collections   *Store[*model.Record]
	AdminPolicies *Store[RelatedObject]
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	maxEntries int
	observer   Observer
}

// WithMaxEntries bounds each store to n entries with LRU eviction.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithObserver reports lookups to o.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// New creates an empty cache. Stores are unbounded unless WithMaxEntries is set.
func New(opts ...Option) *Cache {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache{
		Collections:   NewStore[*model.Record](StoreCollections, o.maxEntries, o.observer),
		AdminPolicies: NewStore[RelatedObject](StoreAdminPolicies, o.maxEntries, o.observer),
	}
}

// Reset clears every store.
func (c *Cache) Reset() {
	c.Collections.Reset()
	c.AdminPolicies.Reset()
}

// Stats returns per-store counters keyed by store name.
func (c *Cache) Stats() map[string]Stats {
	return map[string]Stats{
		StoreCollections:   c.Collections.Stats(),
		StoreAdminPolicies: c.AdminPolicies.Stats(),
	}
}
