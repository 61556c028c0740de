package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
	"github.com/ewilliams-labs/tuniverse/internal/metrics"
)

// Snapshot sources, used as user ids and metric labels.
const (
	SourceTopArtists     = "from_token"
	SourceRecentlyPlayed = "from_token_recent"
	SourceStored         = "stored"
)

const (
	topArtistsNote     = "Fast inference; limited for speed."
	recentlyPlayedNote = "Built from recently played; fast inference."
)

// PassportLimits bounds the artist sets fed to the builder.
type PassportLimits struct {
	// RecentArtistCap caps distinct recently played artists per snapshot.
	RecentArtistCap int
}

// DefaultPassportLimits returns the limits used when none are configured.
func DefaultPassportLimits() PassportLimits {
	return PassportLimits{RecentArtistCap: 12}
}

// Orchestrator coordinates listening history, the snapshot builder and the
// passport repository.
type Orchestrator struct {
	history ports.ListeningHistory
	repo    ports.PassportRepository
	builder *SnapshotBuilder
	limits  PassportLimits
	now     func() time.Time
	newID   func() string
	metrics *metrics.Metrics
}

type OrchestratorOption func(*Orchestrator)

func WithPassportLimits(l PassportLimits) OrchestratorOption {
	return func(o *Orchestrator) {
		if l.RecentArtistCap > 0 {
			o.limits = l
		}
	}
}

func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithOrchestratorIDs(newID func() string) OrchestratorOption {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func WithOrchestratorMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(history ports.ListeningHistory, repo ports.PassportRepository, builder *SnapshotBuilder, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		history: history,
		repo:    repo,
		builder: builder,
		limits:  DefaultPassportLimits(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PassportFromTopArtists builds a snapshot from the user's top artists.
func (o *Orchestrator) PassportFromTopArtists(ctx context.Context, accessToken string, limit int) (domain.PassportSnapshot, error) {
	names, err := o.history.TopArtists(ctx, accessToken, limit)
	if err != nil {
		return domain.PassportSnapshot{}, fmt.Errorf("service: failed to fetch top artists: %w", err)
	}

	snap := o.builder.Build(ctx, names, limit, ForUser(SourceTopArtists), WithNote(topArtistsNote))
	o.metrics.ObserveSnapshot(SourceTopArtists, snap.TotalArtists)
	return snap, nil
}

// PassportFromRecentlyPlayed builds a snapshot from recently played tracks.
// limit is the number of plays requested; distinct artists are capped
// separately.
func (o *Orchestrator) PassportFromRecentlyPlayed(ctx context.Context, accessToken string, limit int) (domain.PassportSnapshot, error) {
	names, err := o.history.RecentlyPlayedArtists(ctx, accessToken, limit)
	if err != nil {
		return domain.PassportSnapshot{}, fmt.Errorf("service: failed to fetch recently played: %w", err)
	}

	snap := o.builder.Build(ctx, names, o.limits.RecentArtistCap, ForUser(SourceRecentlyPlayed), WithNote(recentlyPlayedNote))
	o.metrics.ObserveSnapshot(SourceRecentlyPlayed, snap.TotalArtists)
	return snap, nil
}

// PassportForUser computes a summary from the artists stored for userID and
// persists it. Stored origins are normalized; artists without one count as
// Unknown.
func (o *Orchestrator) PassportForUser(ctx context.Context, userID string) (domain.PassportSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.PassportSummary{}, fmt.Errorf("service: user id is required: %w", domain.ErrInvalidArgument)
	}

	artists, err := o.repo.ListUserArtists(ctx, userID)
	if err != nil {
		return domain.PassportSummary{}, fmt.Errorf("service: failed to load artists: %w", err)
	}

	var counts domain.CountryCounts
	for _, a := range artists {
		counts.Add(domain.Normalize(a.Origin), 1)
	}

	summary := domain.PassportSummary{
		ID:                o.newID(),
		UserID:            userID,
		CreatedAt:         o.now().UTC().Truncate(time.Second),
		CountryCounts:     counts,
		RegionPercentages: domain.Rollup(counts),
		TotalArtists:      counts.Total(),
	}
	if err := o.repo.SaveSummary(ctx, summary); err != nil {
		return domain.PassportSummary{}, fmt.Errorf("service: failed to save summary: %w", err)
	}

	o.metrics.ObserveSnapshot(SourceStored, summary.TotalArtists)
	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Int("artists", summary.TotalArtists).
		Msg("service: passport summary saved")
	return summary, nil
}

// LatestPassport returns the most recent stored summary for userID.
func (o *Orchestrator) LatestPassport(ctx context.Context, userID string) (domain.PassportSummary, error) {
	summary, err := o.repo.LatestSummary(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PassportSummary{}, fmt.Errorf("service: no passport for %q: %w", userID, err)
		}
		return domain.PassportSummary{}, fmt.Errorf("service: failed to load summary: %w", err)
	}
	return summary, nil
}

// RecordArtists stores names for userID without origins and returns the
// names actually recorded. Origins are filled in later by the worker pool.
func (o *Orchestrator) RecordArtists(ctx context.Context, userID string, names []string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("service: user id is required: %w", domain.ErrInvalidArgument)
	}
	names = domain.DedupeArtistNames(names, 0)
	if len(names) == 0 {
		return nil, fmt.Errorf("service: no artist names: %w", domain.ErrInvalidArgument)
	}

	if err := o.repo.RecordArtists(ctx, userID, names); err != nil {
		return nil, fmt.Errorf("service: failed to record artists: %w", err)
	}
	return names, nil
}

// Profile returns the user's streaming profile.
func (o *Orchestrator) Profile(ctx context.Context, accessToken string) (ports.Profile, error) {
	profile, err := o.history.Profile(ctx, accessToken)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("service: failed to fetch profile: %w", err)
	}
	return profile, nil
}

// Me returns the user's profile and, when available, what they played last.
func (o *Orchestrator) Me(ctx context.Context, accessToken string) (ports.Profile, *ports.NowPlaying, error) {
	profile, err := o.Profile(ctx, accessToken)
	if err != nil {
		return ports.Profile{}, nil, err
	}

	playing, err := o.history.NowPlaying(ctx, accessToken)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("service: now playing unavailable")
		playing = nil
	}
	return profile, playing, nil
}

// TopArtistNames passes through the user's top artist names.
func (o *Orchestrator) TopArtistNames(ctx context.Context, accessToken string, limit int) ([]string, error) {
	names, err := o.history.TopArtists(ctx, accessToken, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch top artists: %w", err)
	}
	return names, nil
}
