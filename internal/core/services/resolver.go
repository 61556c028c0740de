package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
	"github.com/ewilliams-labs/tuniverse/internal/metrics"
)

const (
	defaultLookupTimeout = 3 * time.Second
	defaultNegativeTTL   = time.Hour
)

// Hand-curated origins for artists common enough to skip the network.
var quickOriginSeeds = map[string]string{
	"Taylor Swift":   "US",
	"Drake":          "CA",
	"Bad Bunny":      "PR",
	"Adele":          "GB",
	"BTS":            "KR",
	"BLACKPINK":      "KR",
	"Daft Punk":      "FR",
	"Arctic Monkeys": "GB",
	"The Beatles":    "GB",
	"Kendrick Lamar": "US",
	"YOASOBI":        "JP",
	"IU":             "KR",
	"Rammstein":      "DE",
}

// NoLookup is the seed-only strategy: every external lookup misses.
type NoLookup struct{}

var _ ports.OriginLookup = NoLookup{}

func (NoLookup) LookupOrigin(context.Context, string) (string, error) {
	return "", ports.ErrOriginNotFound
}

type cacheEntry struct {
	label    string
	found    bool
	storedAt time.Time
	// skipped entries come from lookups that were never sent; they are
	// returned to the caller but never cached.
	skipped bool
}

// originCache memoizes lookup results per artist. Found labels live for the
// process lifetime; misses expire after negativeTTL (0 keeps them forever).
type originCache struct {
	mu          sync.Mutex
	entries     map[string]cacheEntry
	negativeTTL time.Duration
	now         func() time.Time
}

func (c *originCache) get(artist string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[artist]
	if !ok {
		return cacheEntry{}, false
	}
	if !e.found && c.negativeTTL > 0 && c.now().Sub(e.storedAt) >= c.negativeTTL {
		delete(c.entries, artist)
		return cacheEntry{}, false
	}
	return e, true
}

// putIfAbsent stores e unless a live entry already exists, and returns the
// entry that ended up in the cache.
func (c *originCache) putIfAbsent(artist string, e cacheEntry) cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[artist]; ok {
		expired := !existing.found && c.negativeTTL > 0 && c.now().Sub(existing.storedAt) >= c.negativeTTL
		if !expired {
			return existing
		}
	}
	c.entries[artist] = e
	return e
}

func (c *originCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// OriginResolver resolves artist names to country codes through a cascade:
// the seed table, then the cached external lookup, then Unknown. It owns its
// cache; build one per process (or per test).
type OriginResolver struct {
	lookup  ports.OriginLookup
	cache   *originCache
	flights singleflight.Group
	timeout time.Duration
	metrics *metrics.Metrics
}

// ResolverOption configures an OriginResolver.
type ResolverOption func(*OriginResolver)

// WithLookupTimeout bounds every external lookup.
func WithLookupTimeout(d time.Duration) ResolverOption {
	return func(r *OriginResolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithNegativeTTL sets how long a failed lookup is remembered. Zero means for
// the life of the resolver.
func WithNegativeTTL(d time.Duration) ResolverOption {
	return func(r *OriginResolver) {
		if d >= 0 {
			r.cache.negativeTTL = d
		}
	}
}

func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *OriginResolver) { r.metrics = m }
}

func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *OriginResolver) {
		if now != nil {
			r.cache.now = now
		}
	}
}

// NewOriginResolver builds a resolver around lookup. A nil lookup selects
// NoLookup.
func NewOriginResolver(lookup ports.OriginLookup, opts ...ResolverOption) *OriginResolver {
	if lookup == nil {
		lookup = NoLookup{}
	}
	r := &OriginResolver{
		lookup:  lookup,
		timeout: defaultLookupTimeout,
		cache: &originCache{
			entries:     make(map[string]cacheEntry),
			negativeTTL: defaultNegativeTTL,
			now:         time.Now,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical country code for artist. It never fails:
// anything unresolvable is Unknown.
func (r *OriginResolver) Resolve(ctx context.Context, artist string) domain.CountryCode {
	label, ok := r.ResolveLabel(ctx, artist)
	if !ok {
		return domain.Unknown
	}
	return domain.Normalize(label)
}

// ResolveLabel returns the raw geographic label found by the cascade, before
// normalization.
func (r *OriginResolver) ResolveLabel(ctx context.Context, artist string) (string, bool) {
	if label, ok := quickOriginSeeds[artist]; ok {
		r.metrics.IncResolve(metrics.OutcomeSeed)
		return label, true
	}
	e := r.cachedLookup(ctx, artist)
	return e.label, e.found
}

// CachedArtists reports how many artists have a cached lookup result.
func (r *OriginResolver) CachedArtists() int {
	return r.cache.len()
}

func (r *OriginResolver) cachedLookup(ctx context.Context, artist string) cacheEntry {
	if e, ok := r.cache.get(artist); ok {
		r.metrics.IncResolve(metrics.OutcomeCacheHit)
		return e
	}

	v, _, _ := r.flights.Do(artist, func() (any, error) {
		if e, ok := r.cache.get(artist); ok {
			return e, nil
		}
		e := r.fetch(ctx, artist)
		if e.skipped {
			return e, nil
		}
		return r.cache.putIfAbsent(artist, e), nil
	})
	return v.(cacheEntry)
}

// fetch runs one external lookup on a context detached from the caller's
// cancellation so an abandoned request cannot poison the cache.
func (r *OriginResolver) fetch(ctx context.Context, artist string) (entry cacheEntry) {
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		r.metrics.ObserveLookup(time.Since(start))
		if p := recover(); p != nil {
			logging.Ctx(ctx).Error().Str("artist", artist).Interface("panic", p).Msg("resolver: origin lookup panicked")
			entry = cacheEntry{storedAt: r.cache.now()}
		}
		switch {
		case entry.found:
			r.metrics.IncResolve(metrics.OutcomeLookupHit)
		case entry.skipped:
			r.metrics.IncResolve(metrics.OutcomeLookupSkipped)
		default:
			r.metrics.IncResolve(metrics.OutcomeLookupMiss)
		}
	}()

	label, err := r.lookup.LookupOrigin(lookupCtx, artist)
	label = strings.TrimSpace(label)
	if errors.Is(err, ports.ErrLookupSkipped) {
		logging.Ctx(ctx).Debug().Err(err).Str("artist", artist).Msg("resolver: origin lookup skipped")
		return cacheEntry{skipped: true}
	}
	if err != nil || label == "" {
		if err != nil && !errors.Is(err, ports.ErrOriginNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Str("artist", artist).Msg("resolver: origin lookup failed")
		}
		return cacheEntry{storedAt: r.cache.now()}
	}
	return cacheEntry{label: label, found: true, storedAt: r.cache.now()}
}
