// Package worker resolves origins for recorded artists in the background.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
	"github.com/ewilliams-labs/tuniverse/internal/metrics"
)

// Job result labels.
const (
	ResultResolved   = "resolved"
	ResultUnresolved = "unresolved"
	ResultFailed     = "failed"
	ResultDropped    = "dropped"
)

// ErrQueueFull is returned by Submit when the job is dropped.
var ErrQueueFull = errors.New("worker: queue full")

// Job asks for the origin of one recorded artist.
type Job struct {
	UserID string
	Artist string
}

// LabelResolver resolves an artist to its raw origin label.
type LabelResolver interface {
	ResolveLabel(ctx context.Context, artist string) (string, bool)
}

// Pool manages background workers that resolve and store artist origins.
type Pool struct {
	resolver   LabelResolver
	repo       ports.PassportRepository
	metrics    *metrics.Metrics
	jobTimeout time.Duration

	jobs   chan Job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a worker pool with the given queue size.
func NewPool(resolver LabelResolver, repo ports.PassportRepository, queueSize int, m *metrics.Metrics) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		resolver:   resolver,
		repo:       repo,
		metrics:    m,
		jobTimeout: 10 * time.Second,
		jobs:       make(chan Job, queueSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.metrics.IncWorkerJob(ResultDropped)
		return ErrQueueFull
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		p.metrics.IncWorkerJob(ResultDropped)
		logging.Warn().Str("user_id", job.UserID).Str("artist", job.Artist).Msg("worker: dropping job")
		return ErrQueueFull
	}
}

// SubmitAll queues a job per artist and reports how many were accepted.
func (p *Pool) SubmitAll(userID string, artists []string) int {
	accepted := 0
	for _, artist := range artists {
		if err := p.Submit(Job{UserID: userID, Artist: artist}); err == nil {
			accepted++
		}
	}
	return accepted
}

func (p *Pool) processJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.IncWorkerJob(ResultFailed)
			logging.Error().Interface("panic", r).Str("artist", job.Artist).Msg("worker: job panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	label, ok := p.resolver.ResolveLabel(ctx, job.Artist)
	if !ok {
		p.metrics.IncWorkerJob(ResultUnresolved)
		logging.Debug().Str("user_id", job.UserID).Str("artist", job.Artist).Msg("worker: origin unresolved")
		return
	}

	if err := p.repo.UpdateArtistOrigin(ctx, job.UserID, job.Artist, label); err != nil {
		p.metrics.IncWorkerJob(ResultFailed)
		logging.Warn().Err(err).Str("user_id", job.UserID).Str("artist", job.Artist).Msg("worker: failed to store origin")
		return
	}

	p.metrics.IncWorkerJob(ResultResolved)
	logging.Debug().
		Str("user_id", job.UserID).
		Str("artist", job.Artist).
		Str("origin", label).
		Msg("worker: origin stored")
}
