package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncResolve(OutcomeSeed)
	m.IncResolve(OutcomeSeed)
	m.IncResolve(OutcomeLookupMiss)
	m.ObserveSnapshot("top_artists", 3)
	m.SetBreakerState("musicbrainz", 2)
	m.IncWorkerJob("resolved")
	m.IncCommunityPost()
	m.ObserveLookup(150 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResolveOutcomes.WithLabelValues(OutcomeSeed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveOutcomes.WithLabelValues(OutcomeLookupMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsBuilt.WithLabelValues("top_artists")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("musicbrainz")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkerJobs.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommunityPosts))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncResolve(OutcomeSeed)
		m.ObserveLookup(time.Second)
		m.ObserveSnapshot("recent", 0)
		m.SetBreakerState("x", 0)
		m.IncWorkerJob("failed")
		m.IncCommunityPost()
	})
}
