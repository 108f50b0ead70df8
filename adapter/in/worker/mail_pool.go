// Package worker runs Phase-2 enrichment on a fixed-size pool.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/core/service/enrich"
)

// =============================================================================
// go-pkgz/pool based enrichment pool
// =============================================================================

// PoolConfig holds worker pool configuration. QueueSize is the total number
// of buffered jobs across the pool; it is split evenly over the per-worker
// channels.
type PoolConfig struct {
	Workers    int
	QueueSize  int
	BatchSize  int
	JobTimeout time.Duration
}

// DefaultPoolConfig returns default pool configuration.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Workers:    4,
		QueueSize:  256,
		BatchSize:  1,
		JobTimeout: 5 * time.Minute,
	}
}

// chanSizePerWorker splits the total queue budget over the workers, never
// below one slot each.
func chanSizePerWorker(queueSize, workers int) int {
	if workers < 1 {
		workers = 1
	}
	size := queueSize / workers
	if size < 1 {
		size = 1
	}
	return size
}

// PoolMetrics holds pool counters.
type PoolMetrics struct {
	JobsProcessed int64
	JobsFailed    int64
	JobsDropped   int64
}

// Pool is the fixed-size enrichment worker pool. One submission per mail,
// no retries: a failed enrichment leaves the Phase-1 record unpatched and
// the next batch run picks the mail up again via the idempotent create.
type Pool struct {
	processor *EnrichProcessor
	config    *PoolConfig

	pool *pool.WorkerGroup[*Job]

	ctx    context.Context
	cancel context.CancelFunc

	metrics PoolMetrics
	log     zerolog.Logger

	started bool
	mu      sync.Mutex
}

// enrichWorker implements pool.Worker for Job processing.
type enrichWorker struct {
	pool *Pool
}

// Do implements pool.Worker.
func (w *enrichWorker) Do(ctx context.Context, job *Job) error {
	return w.pool.processJob(ctx, job)
}

// NewPool creates the enrichment pool around a processor.
func NewPool(processor *EnrichProcessor, config *PoolConfig) *Pool {
	if config == nil {
		config = DefaultPoolConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		processor: processor,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		log:       log.With().Str("component", "enrich_pool").Logger(),
	}
}

// Start launches the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	w := &enrichWorker{pool: p}
	p.pool = pool.New[*Job](p.config.Workers, w).
		WithBatchSize(p.config.BatchSize).
		WithWorkerChanSize(chanSizePerWorker(p.config.QueueSize, p.config.Workers)).
		WithContinueOnError()

	if err := p.pool.Go(p.ctx); err != nil {
		return err
	}
	p.started = true

	p.log.Info().
		Int("workers", p.config.Workers).
		Int("queue_size", p.config.QueueSize).
		Msg("enrichment pool started")
	return nil
}

// Stop drains in-flight jobs and shuts the pool down.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()

	if err := p.pool.Close(closeCtx); err != nil {
		p.log.Warn().Err(err).Msg("error closing enrichment pool")
	}
	p.cancel()

	p.log.Info().
		Int64("processed", atomic.LoadInt64(&p.metrics.JobsProcessed)).
		Int64("failed", atomic.LoadInt64(&p.metrics.JobsFailed)).
		Msg("enrichment pool stopped")
}

// Enqueue submits a mail for enrichment. Implements ingest.EnrichQueue.
func (p *Pool) Enqueue(m *domain.Message, progress *enrich.Progress) bool {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	if !started {
		atomic.AddInt64(&p.metrics.JobsDropped, 1)
		p.log.Warn().Str("mail_id", m.ID).Msg("pool not started, job dropped")
		return false
	}

	p.pool.Submit(&Job{Mail: m, Progress: progress})
	return true
}

// Wait blocks until all submitted jobs finish. Used by tests and by the
// synchronous dev-mode runner.
func (p *Pool) Wait() error {
	p.mu.Lock()
	wg := p.pool
	p.mu.Unlock()
	if wg == nil {
		return nil
	}
	return wg.Wait(p.ctx)
}

// GetMetrics returns a snapshot of the counters.
func (p *Pool) GetMetrics() PoolMetrics {
	return PoolMetrics{
		JobsProcessed: atomic.LoadInt64(&p.metrics.JobsProcessed),
		JobsFailed:    atomic.LoadInt64(&p.metrics.JobsFailed),
		JobsDropped:   atomic.LoadInt64(&p.metrics.JobsDropped),
	}
}

// processJob runs one enrichment with the job timeout applied.
func (p *Pool) processJob(ctx context.Context, job *Job) error {
	jobCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	start := time.Now()
	outcome := p.processor.Process(jobCtx, job)
	elapsed := time.Since(start)

	switch outcome.Status {
	case domain.OutcomeFailed:
		atomic.AddInt64(&p.metrics.JobsFailed, 1)
		p.log.Error().
			Err(outcome.Err).
			Str("mail_id", job.Mail.ID).
			Dur("elapsed", elapsed).
			Msg("enrichment failed")
		return outcome.Err
	case domain.OutcomeDegraded:
		atomic.AddInt64(&p.metrics.JobsProcessed, 1)
		p.log.Warn().
			Err(outcome.Err).
			Str("mail_id", job.Mail.ID).
			Dur("elapsed", elapsed).
			Msg("enrichment degraded to keyword fallback")
	default:
		atomic.AddInt64(&p.metrics.JobsProcessed, 1)
		p.log.Debug().
			Str("mail_id", job.Mail.ID).
			Dur("elapsed", elapsed).
			Msg("enrichment succeeded")
	}
	return nil
}
