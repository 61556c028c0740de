// Package metrics exposes Prometheus instrumentation for the passport engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolver outcome labels.
const (
	OutcomeSeed          = "seed"
	OutcomeCacheHit      = "cache_hit"
	OutcomeLookupHit     = "lookup_hit"
	OutcomeLookupMiss    = "lookup_miss"
	OutcomeLookupSkipped = "lookup_skipped"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ResolveOutcomes *prometheus.CounterVec
	LookupLatency   prometheus.Histogram
	SnapshotsBuilt  *prometheus.CounterVec
	SnapshotArtists prometheus.Histogram
	BreakerState    *prometheus.GaugeVec
	WorkerJobs      *prometheus.CounterVec
	CommunityPosts  prometheus.Counter
}

// New creates and registers collectors on reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ResolveOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tuniverse_resolver_outcomes_total",
			Help: "Artist origin resolutions by cascade outcome",
		}, []string{"outcome"}),

		LookupLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tuniverse_origin_lookup_duration_seconds",
			Help:    "Duration of external origin lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		}),

		SnapshotsBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tuniverse_snapshots_built_total",
			Help: "Passport snapshots built by source",
		}, []string{"source"}),

		SnapshotArtists: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tuniverse_snapshot_artists",
			Help:    "Artists considered per snapshot",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		}),

		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tuniverse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),

		WorkerJobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tuniverse_worker_jobs_total",
			Help: "Background origin jobs by result",
		}, []string{"result"}),

		CommunityPosts: f.NewCounter(prometheus.CounterOpts{
			Name: "tuniverse_community_posts_total",
			Help: "Community posts shared",
		}),
	}
}

func (m *Metrics) IncResolve(outcome string) {
	if m != nil {
		m.ResolveOutcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveLookup(d time.Duration) {
	if m != nil {
		m.LookupLatency.Observe(d.Seconds())
	}
}

// ObserveSnapshot records a built snapshot and how many artists it covered.
func (m *Metrics) ObserveSnapshot(source string, artists int) {
	if m != nil {
		m.SnapshotsBuilt.WithLabelValues(source).Inc()
		m.SnapshotArtists.Observe(float64(artists))
	}
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m != nil {
		m.BreakerState.WithLabelValues(name).Set(state)
	}
}

func (m *Metrics) IncWorkerJob(result string) {
	if m != nil {
		m.WorkerJobs.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncCommunityPost() {
	if m != nil {
		m.CommunityPosts.Inc()
	}
}
