package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
	"github.com/ewilliams-labs/tuniverse/internal/metrics"
)

const defaultResolveConcurrency = 8

// Resolver maps one artist name to a country code without failing.
type Resolver interface {
	Resolve(ctx context.Context, artist string) domain.CountryCode
}

// SnapshotBuilder turns artist names into PassportSnapshots.
type SnapshotBuilder struct {
	resolver    Resolver
	concurrency int
	now         func() time.Time
	newID       func() string
	metrics     *metrics.Metrics
}

type BuilderOption func(*SnapshotBuilder)

// WithConcurrency caps how many artists are resolved at once.
func WithConcurrency(n int) BuilderOption {
	return func(b *SnapshotBuilder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithBuilderClock(now func() time.Time) BuilderOption {
	return func(b *SnapshotBuilder) {
		if now != nil {
			b.now = now
		}
	}
}

func WithIDGenerator(newID func() string) BuilderOption {
	return func(b *SnapshotBuilder) {
		if newID != nil {
			b.newID = newID
		}
	}
}

func WithBuilderMetrics(m *metrics.Metrics) BuilderOption {
	return func(b *SnapshotBuilder) { b.metrics = m }
}

func NewSnapshotBuilder(resolver Resolver, opts ...BuilderOption) *SnapshotBuilder {
	b := &SnapshotBuilder{
		resolver:    resolver,
		concurrency: defaultResolveConcurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SnapshotOption labels a snapshot at build time.
type SnapshotOption func(*domain.PassportSnapshot)

func ForUser(userID string) SnapshotOption {
	return func(s *domain.PassportSnapshot) { s.UserID = userID }
}

func WithNote(note string) SnapshotOption {
	return func(s *domain.PassportSnapshot) { s.Note = note }
}

// Build dedupes names (after trimming), keeps at most limit of them (limit <= 0
// keeps all), resolves each and aggregates the result. Counts and region
// fractions depend only on the multiset of retained names; country keys keep
// the order in which the retained names first produced them. Build never
// fails: unresolvable artists count as Unknown.
func (b *SnapshotBuilder) Build(ctx context.Context, names []string, limit int, opts ...SnapshotOption) domain.PassportSnapshot {
	retained := domain.DedupeArtistNames(names, limit)
	codes := b.resolveAll(ctx, retained)

	var counts domain.CountryCounts
	byCountry := domain.ArtistsByCountry{}
	for i, name := range retained {
		counts.Add(codes[i], 1)
		byCountry.Add(codes[i], name)
	}
	byCountry.Sort()

	snap := domain.PassportSnapshot{
		ID:                b.newID(),
		CreatedAt:         b.now().UTC(),
		CountryCounts:     counts,
		RegionPercentages: domain.Rollup(counts),
		TotalArtists:      len(retained),
		ArtistsByCountry:  byCountry,
	}
	for _, opt := range opts {
		opt(&snap)
	}

	logging.Ctx(ctx).Debug().
		Str("snapshot_id", snap.ID).
		Int("artists", snap.TotalArtists).
		Int("countries", counts.Len()).
		Msg("builder: snapshot built")
	return snap
}

// resolveAll resolves names concurrently and returns codes in input order.
func (b *SnapshotBuilder) resolveAll(ctx context.Context, names []string) []domain.CountryCode {
	codes := make([]domain.CountryCode, len(names))
	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, name := range names {
		g.Go(func() error {
			codes[i] = b.resolveOne(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
	return codes
}

func (b *SnapshotBuilder) resolveOne(ctx context.Context, name string) (code domain.CountryCode) {
	defer func() {
		if p := recover(); p != nil {
			logging.Ctx(ctx).Error().Str("artist", name).Interface("panic", p).Msg("builder: resolver panicked")
			code = domain.Unknown
		}
	}()
	return b.resolver.Resolve(ctx, name)
}
