// Package threshold resolves the year-scoped set of income walls, caching
// the result and falling back across tiers when the primary source fails.
package threshold

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

const (
	// DefaultTTL is how long a primary-source result stays cached.
	DefaultTTL = 5 * time.Minute
	// FallbackBackdate is the fraction of the TTL a fallback result is
	// considered already aged by when it is cached.
	FallbackBackdate = 0.8
)

// Cache is the single shared threshold cache entry. Entries are replaced
// whole and never mutated in place.
type Cache struct {
	entry *cacheEntry
	mu    sync.RWMutex
}

type cacheEntry struct {
	loadedAt time.Time
	set      model.ThresholdSet
	origin   Origin
	year     int
}

func (c *Cache) load() *cacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry
}

func (c *Cache) store(e *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = e
}

func (c *Cache) clear() {
	c.store(nil)
}

// Store serves active thresholds per year.
type Store struct {
	cache  *Cache
	writer Writer
	now    func() time.Time
	chain  []Provider
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCache shares an existing cache handle.
func WithCache(c *Cache) Option {
	return func(s *Store) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithWriter enables administrative edits through Activate.
func WithWriter(w Writer) Option {
	return func(s *Store) {
		s.writer = w
	}
}

// NewStore builds a store over an ordered provider chain. The first provider
// is the primary source; the rest are fallbacks. The built-in tier is
// appended when the chain does not already end with it.
func NewStore(chain []Provider, opts ...Option) *Store {
	providers := make([]Provider, 0, len(chain)+1)
	for _, p := range chain {
		if p.Load != nil {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 || providers[len(providers)-1].Origin != OriginBuiltin {
		providers = append(providers, FromBuiltin())
	}

	s := &Store{
		chain: providers,
		cache: &Cache{},
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveThresholds returns the threshold set for year. It never fails: when
// every configured tier is unavailable the built-in values are returned.
// The returned set always contains every known key.
func (s *Store) ActiveThresholds(ctx context.Context, year int) model.ThresholdSet {
	now := s.now()

	if entry := s.cache.load(); entry != nil && entry.year == year && now.Sub(entry.loadedAt) < s.ttl {
		slog.Debug("Using cached thresholds", "year", year, "origin", entry.origin)
		return entry.set.Clone()
	}

	for i, provider := range s.chain {
		set, ok := provider.Load(ctx, year)
		if !ok || len(set) == 0 {
			continue
		}
		set = complete(set.Clone(), year)

		loadedAt := now
		if i > 0 {
			slog.Warn("Using fallback thresholds", "year", year, "origin", provider.Origin)
			loadedAt = now.Add(-time.Duration(float64(s.ttl) * FallbackBackdate))
		}

		s.cache.store(&cacheEntry{
			set:      set,
			origin:   provider.Origin,
			year:     year,
			loadedAt: loadedAt,
		})
		return set.Clone()
	}

	// Unreachable while the built-in tier is last, kept so the contract holds
	// even for a hand-built chain.
	return Builtin(year)
}

// Invalidate drops the cached set so the next call reloads it.
func (s *Store) Invalidate() {
	s.cache.clear()
	slog.Info("Threshold cache invalidated")
}

// ThresholdByKey returns a single threshold for year.
func (s *Store) ThresholdByKey(ctx context.Context, key string, year int) (model.ThresholdDefinition, bool) {
	def, ok := s.ActiveThresholds(ctx, year)[key]
	return def, ok
}

// ThresholdsByKind returns the thresholds of one kind ordered by amount.
func (s *Store) ThresholdsByKind(ctx context.Context, kind model.ThresholdKind, year int) []model.ThresholdDefinition {
	var out []model.ThresholdDefinition
	for _, def := range s.ActiveThresholds(ctx, year) {
		if def.Kind == kind {
			out = append(out, def)
		}
	}
	SortByAmount(out)
	return out
}

// SortByAmount orders definitions by amount, then key.
func SortByAmount(defs []model.ThresholdDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Amount != defs[j].Amount {
			return defs[i].Amount < defs[j].Amount
		}
		return defs[i].Key < defs[j].Key
	})
}

// Activate marks keys as the active thresholds for year and invalidates the
// cache so the change is visible on the next read.
func (s *Store) Activate(ctx context.Context, year int, keys []string) (int, error) {
	if s.writer == nil {
		return 0, fmt.Errorf("%w: threshold writer", common.ErrMissingConfig)
	}
	affected, err := s.writer.SetThresholdsActive(ctx, year, keys)
	if err != nil {
		return 0, fmt.Errorf("failed to activate thresholds for %d: %w", year, err)
	}
	s.Invalidate()
	return affected, nil
}

// HealthStatus summarises which tier is answering.
type HealthStatus string

// Health statuses. The built-in tier always answers, so a store is never
// down; it is degraded whenever the primary source is not serving.
const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDegraded HealthStatus = "degraded"
)

// Health reports the state of the threshold system.
type Health struct {
	CheckedAt      time.Time
	Status         HealthStatus
	Source         Origin
	ThresholdCount int
}

// Health probes the chain without touching the cache.
func (s *Store) Health(ctx context.Context) Health {
	now := s.now()
	year := now.Year()

	for i, provider := range s.chain {
		set, ok := provider.Load(ctx, year)
		if !ok || len(set) == 0 {
			continue
		}
		status := StatusHealthy
		if i > 0 {
			status = StatusDegraded
		}
		return Health{
			Status:         status,
			Source:         provider.Origin,
			ThresholdCount: len(set),
			CheckedAt:      now,
		}
	}

	return Health{
		Status:         StatusDegraded,
		Source:         OriginBuiltin,
		ThresholdCount: len(Builtin(year)),
		CheckedAt:      now,
	}
}
