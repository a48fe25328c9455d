// Package worker defines worker contracts for executing queued
// simulation runs and publishing their results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/psephos/internal/adapters/mq/queue"
	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/pkg/logger"
	"github.com/okian/psephos/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job abstracts what workers read off the queue.
// Using the model.RunJob type for consistency.
type Job = model.RunJob

// Runner executes a complete simulation run for a queued job.
type Runner interface {
	Execute(ctx context.Context, job Job) (*model.RunRecord, error)
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, job Job) (*model.RunRecord, error)

// Execute calls f.
func (f RunnerFunc) Execute(ctx context.Context, job Job) (*model.RunRecord, error) {
	return f(ctx, job)
}

// Ranker admits a completed run into the fairness ranking.
type Ranker interface {
	Insert(ctx context.Context, record *model.RunRecord) (bool, error)
}

// Cache remembers completed runs by spec fingerprint so identical
// submissions can be answered without recomputation.
type Cache interface {
	Store(ctx context.Context, fingerprint string, record *model.RunRecord)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs and publishes run results using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining jobs before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing simulation jobs.
type InMemoryWorker struct {
	queue  Queue
	runner Runner
	ranker Ranker
	cache  Cache
	name   string

	// Called after each successfully completed run.
	onComplete func()

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, runner Runner, ranker Ranker, cache Cache, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		runner:   runner,
		ranker:   ranker,
		cache:    cache,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			// Process the job
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			} else if w.onComplete != nil {
				w.onComplete()
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	select {
	case <-w.shutdown:
		// Already signalled
	default:
		close(w.shutdown)
	}

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob executes a single queued run.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error {
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	// Track election latency separately from queue and ranking time
	electStart := time.Now()
	record, err := w.runner.Execute(ctx, job)
	metrics.RecordElectionLatency(float64(time.Since(electStart).Milliseconds()))

	if err != nil {
		metrics.RecordRunFailed()
		metrics.RecordElectionError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "election_error")
		w.logger.Error(ctx, "run execution failed",
			logger.String("runID", job.RunID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to execute run %s: %w", job.RunID, err)
	}

	// The submitter's run id wins over the engine-generated one so
	// clients can look up what they were handed at submission.
	record.RunID = job.RunID

	metrics.RecordRunDuration(float64(record.Elapsed.Milliseconds()))
	metrics.RecordElection(record.Spec.Rule)
	metrics.RecordWeightedFairness(record.WeightedFairness)
	metrics.RecordUnweightedFairness(record.UnweightedFairness)
	if record.Result != nil && len(record.Result.Rounds) > 0 {
		metrics.RecordRunoffRounds(len(record.Result.Rounds))
	}

	// Cache before ranking so an identical resubmission hits even if
	// the ranking insert fails.
	if w.cache != nil && job.Fingerprint != "" {
		w.cache.Store(ctx, job.Fingerprint, record)
	}

	ranked, err := w.ranker.Insert(ctx, record)
	if err != nil {
		metrics.RecordRankingError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "ranking_error")
		w.logger.Error(ctx, "ranking update failed",
			logger.String("runID", job.RunID),
			logger.Error(err),
		)
		return fmt.Errorf("ranking update failed: %w", err)
	}

	if ranked {
		metrics.RecordRankingUpdate()
	}
	metrics.RecordRunCompleted()

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	runner  Runner
	ranker  Ranker
	cache   Cache

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Metrics tracking
	processedCount    atomic.Int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool. Runs are CPU-bound, so the
// default worker count is the CPU count rather than a multiple of it.
func NewPool(workerCount int, queue Queue, runner Runner, ranker Ranker, cache Cache) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		runner:            runner,
		ranker:            ranker,
		cache:             cache,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			runner,
			ranker,
			cache,
			WithName("worker-"+strconv.Itoa(i)),
			WithCompletionHook(pool.recordProcessedRun),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerRunsPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	// Start metrics updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval) // Update metrics every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	// Calculate runs per second since the last update
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		runsPerSecond := float64(p.processedCount.Swap(0)) / timeDiff
		metrics.UpdateWorkerRunsPerSecond(runsPerSecond)
	}

	p.lastProcessedTime = now
}

// recordProcessedRun increments the processed run count.
func (p *Pool) recordProcessedRun() {
	p.processedCount.Add(1)
}

// signalShutdown closes the pool and worker shutdown channels, once.
func (p *Pool) signalShutdown() {
	select {
	case <-p.shutdown:
		// Already signalled
	default:
		close(p.shutdown)
	}
	for _, worker := range p.workers {
		select {
		case <-worker.shutdown:
		default:
			close(worker.shutdown)
		}
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	p.signalShutdown()

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new jobs
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.signalShutdown()

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
