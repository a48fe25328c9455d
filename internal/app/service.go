// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/psephos/internal/adapters/mq/queue"
	workerpool "github.com/okian/psephos/internal/adapters/mq/worker"
	repository "github.com/okian/psephos/internal/adapters/repository"
	"github.com/okian/psephos/internal/domain/engine"
	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/internal/domain/population"
	"github.com/okian/psephos/internal/domain/runcache"
	"github.com/okian/psephos/internal/domain/types"
	"github.com/okian/psephos/internal/domain/voting"
	"github.com/okian/psephos/pkg/logger"
	"github.com/okian/psephos/pkg/metrics"
)

// engineRunner adapts engine.Execute to the worker.Runner interface
// and keeps the pending-run registry honest on the failure path.
type engineRunner struct {
	svc *Service
}

func (r *engineRunner) Execute(ctx context.Context, job workerpool.Job) (*model.RunRecord, error) {
	record, err := engine.Execute(ctx, job.Spec)
	if err != nil {
		// A failed run never reaches the ranking. Forget it so status
		// lookups report not-found instead of running forever.
		r.svc.clearPending(job.RunID)
		return nil, err
	}
	return record, nil
}

// rankingAdapter clears a run's pending entry once it is ranked.
type rankingAdapter struct {
	store repository.Store
	svc   *Service
}

func (a *rankingAdapter) Insert(ctx context.Context, record *model.RunRecord) (bool, error) {
	ok, err := a.store.Insert(ctx, record)
	if err == nil {
		a.svc.clearPending(record.RunID)
	}
	return ok, err
}

// pendingRun tracks a queued or in-flight run by its cache key.
type pendingRun struct {
	fingerprint string
	submittedAt time.Time
}

// Service implements the API dependencies for the simulation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	ranking    repository.Store
	runCache   runcache.Cache
	jobQueue   jobqueue.Queue
	workerPool *workerpool.Pool

	// In-flight runs by id.
	pendingMu sync.Mutex
	pending   map[string]pendingRun

	// Configuration
	workerCount      int
	queueSize        int
	cacheSize        int
	snapshotInterval time.Duration
	topCacheSize     int
	// Spec fields filled in when a submission omits them.
	defaultIssues     int
	defaultVoters     int
	defaultCandidates int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCacheSize sets the size of the completed-run cache.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithSnapshotInterval sets the ranking snapshot publish interval.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithTopCacheSize sets how many leaderboard entries each ranking
// snapshot precomputes.
func WithTopCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.topCacheSize = size
		}
	}
}

// WithSpecDefaults sets the population shape used when a submission
// omits issues, voters, or candidates.
func WithSpecDefaults(issues, voters, candidates int) Option {
	return func(s *Service) {
		if issues > 0 {
			s.defaultIssues = issues
		}
		if voters > 0 {
			s.defaultVoters = voters
		}
		if candidates > 0 {
			s.defaultCandidates = candidates
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU(), // runs are CPU-bound
		queueSize:         10_000,           // default queue size
		cacheSize:         10_000,           // default run cache size
		snapshotInterval:  time.Second,
		topCacheSize:      500,
		defaultIssues:     2,
		defaultVoters:     10_000,
		defaultCandidates: 2,
		pending:           make(map[string]pendingRun),
		stopCh:            make(chan struct{}),
		logger:            nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting simulation service...")

	// Initialize components
	s.ranking = repository.NewTreapStore(ctx,
		repository.WithSnapshotInterval(s.snapshotInterval),
		repository.WithTopCacheSize(s.topCacheSize),
	)
	s.logger.Info(ctx, "using treap store")
	s.runCache = runcache.NewInMemoryCache(
		runcache.WithMaxSize(s.cacheSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	// Create and start the worker pool over the engine
	runner := &engineRunner{svc: s}
	ranker := &rankingAdapter{store: s.ranking, svc: s}
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, runner, ranker, s.runCache)
	s.workerPool.Start(ctx)

	s.stopCh = make(chan struct{})
	s.started = true
	s.logger.Info(ctx, "simulation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping simulation service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close ranking store
	if s.ranking != nil {
		if closer, ok := s.ranking.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	// Close queue
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "simulation service stopped")
}

// SubmitRun queues a simulation run, or answers it from the run cache
// when an identical spec has already completed. Identical specs are
// deterministic under their seed, so the cached outcome is exact.
func (s *Service) SubmitRun(ctx context.Context, spec model.RunSpec) (types.Submission, error) {
	if !s.isStarted() {
		return types.Submission{}, ErrNotStarted
	}

	spec = s.withSpecDefaults(spec)
	if err := validateSpec(spec); err != nil {
		return types.Submission{}, err
	}

	fingerprint := engine.Fingerprint(spec)

	if record, ok := s.runCache.Lookup(ctx, fingerprint); ok {
		metrics.RecordRunCached()
		s.logger.Debug(ctx, "serving run from cache",
			logger.String("runID", record.RunID),
			logger.String("rule", spec.Rule),
		)
		result := s.runStatus(ctx, record, types.StatusCached)
		return types.Submission{
			RunID:  record.RunID,
			Status: types.StatusCached,
			Result: &result,
		}, nil
	}

	runID := uuid.New().String()
	job := jobqueue.Job{
		RunID:       runID,
		Spec:        spec,
		Fingerprint: fingerprint,
		SubmittedAt: time.Now(),
	}
	if !s.jobQueue.Enqueue(ctx, job) {
		return types.Submission{}, fmt.Errorf("submitting run: %w", jobqueue.ErrQueueFull)
	}
	s.trackPending(runID, fingerprint)
	metrics.UpdateQueueSize(s.jobQueue.Len(ctx))

	s.logger.Debug(ctx, "run queued",
		logger.String("runID", runID),
		logger.String("rule", spec.Rule),
	)
	return types.Submission{RunID: runID, Status: types.StatusQueued}, nil
}

// GetRun reports a run's state: its full outcome with fairness rank
// once completed, or a running status while it is still in flight.
func (s *Service) GetRun(ctx context.Context, runID string) (types.RunStatus, error) {
	if !s.isStarted() {
		return types.RunStatus{}, ErrNotStarted
	}

	record, err := s.ranking.Record(ctx, runID)
	if err == nil {
		s.clearPending(runID)
		return s.runStatus(ctx, record, types.StatusCompleted), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return types.RunStatus{}, err
	}

	// Not ranked yet. A pending entry means the run is queued or in
	// flight; the cache covers the window between completion and
	// ranking.
	if fingerprint, ok := s.pendingFingerprint(runID); ok {
		if record, ok := s.runCache.Lookup(ctx, fingerprint); ok && record.RunID == runID {
			return s.runStatus(ctx, record, types.StatusCompleted), nil
		}
		return types.RunStatus{RunID: runID, Status: types.StatusRunning}, nil
	}

	return types.RunStatus{}, fmt.Errorf("looking up run %s: %w", runID, repository.ErrNotFound)
}

// Leaderboard returns the top N runs by weighted fairness.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	entries, err := s.ranking.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	apiEntries := make([]types.Entry, len(entries))
	for i, entry := range entries {
		apiEntries[i] = types.Entry{
			Rank:       entry.Rank,
			RunID:      entry.RunID,
			Score:      entry.Score,
			Rule:       entry.Rule,
			Scenario:   entry.Scenario,
			Unweighted: entry.Unweighted,
		}
	}

	return apiEntries, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"cacheSize":   s.cacheSize,
		"rules":       voting.Supported(),
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		totalRuns := s.ranking.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalRuns"] = totalRuns
		stats["cachedRuns"] = s.runCache.Size()
		stats["pendingRuns"] = s.pendingCount()

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalRuns(totalRuns)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// isStarted reports whether Start has completed.
func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// withSpecDefaults normalizes the rule and scenario names and fills
// population fields a submission may omit.
func (s *Service) withSpecDefaults(spec model.RunSpec) model.RunSpec {
	spec.Rule = strings.ToLower(strings.TrimSpace(spec.Rule))
	spec.ElectorateScenario = strings.ToLower(strings.TrimSpace(spec.ElectorateScenario))
	spec.CandidateScenario = strings.ToLower(strings.TrimSpace(spec.CandidateScenario))
	if spec.Issues == 0 {
		spec.Issues = s.defaultIssues
	}
	if spec.Voters == 0 {
		spec.Voters = s.defaultVoters
	}
	if spec.Candidates == 0 {
		spec.Candidates = s.defaultCandidates
	}
	return spec
}

// validateSpec rejects specs the engine would refuse, so submitters
// hear about bad parameters at the door rather than from a 404 later.
func validateSpec(spec model.RunSpec) error {
	if _, err := voting.New(spec.Rule); err != nil {
		return fmt.Errorf("%w: unknown rule %q", ErrInvalidSpec, spec.Rule)
	}
	// Empty scenarios are fine; the engine fills its defaults.
	if s := spec.ElectorateScenario; s != "" && !slices.Contains(population.ElectorateScenarios(), s) {
		return fmt.Errorf("%w: unknown electorate scenario %q", ErrInvalidSpec, s)
	}
	if s := spec.CandidateScenario; s != "" && !slices.Contains(population.CandidateScenarios(), s) {
		return fmt.Errorf("%w: unknown candidate scenario %q", ErrInvalidSpec, s)
	}
	switch {
	case spec.Issues < 1:
		return fmt.Errorf("%w: issues must be at least 1", ErrInvalidSpec)
	case spec.Voters < 1:
		return fmt.Errorf("%w: voters must be at least 1", ErrInvalidSpec)
	case spec.Candidates < 1:
		return fmt.Errorf("%w: candidates must be at least 1", ErrInvalidSpec)
	case spec.ApathyProb < 0 || spec.ApathyProb > 1:
		return fmt.Errorf("%w: apathy must be within [0, 1]", ErrInvalidSpec)
	case spec.ShareThreshold < 0 || spec.ShareThreshold >= 1:
		return fmt.Errorf("%w: share threshold must be within [0, 1)", ErrInvalidSpec)
	case spec.MinSeatShare < 0 || spec.MinSeatShare >= 1:
		return fmt.Errorf("%w: min seat share must be within [0, 1)", ErrInvalidSpec)
	case spec.ApprovalsPerVoter > spec.Candidates:
		return fmt.Errorf("%w: approvals per voter cannot exceed candidates", ErrInvalidSpec)
	case spec.RoundKnockouts < 0:
		return fmt.Errorf("%w: round knockouts cannot be negative", ErrInvalidSpec)
	case spec.Seats < 0:
		return fmt.Errorf("%w: seats cannot be negative", ErrInvalidSpec)
	}
	return nil
}

// runStatus converts a completed record to its wire shape, attaching
// the current fairness rank when the run is ranked.
func (s *Service) runStatus(ctx context.Context, record *model.RunRecord, status string) types.RunStatus {
	out := types.RunStatus{
		RunID:              record.RunID,
		Status:             status,
		Rule:               record.Spec.Rule,
		ElectorateScenario: record.Spec.ElectorateScenario,
		WeightedFairness:   record.WeightedFairness,
		UnweightedFairness: record.UnweightedFairness,
		ElapsedMS:          record.Elapsed.Milliseconds(),
	}
	if record.Result != nil {
		out.Winners = record.Result.Winners
		out.Tally = map[int]int(record.Result.CastVotes)
		out.Rounds = len(record.Result.Rounds)
	}
	if entry, err := s.ranking.Rank(ctx, record.RunID); err == nil {
		out.Rank = entry.Rank
	}
	return out
}

func (s *Service) trackPending(runID, fingerprint string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[runID] = pendingRun{fingerprint: fingerprint, submittedAt: time.Now()}
}

func (s *Service) clearPending(runID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, runID)
}

func (s *Service) pendingFingerprint(runID string) (string, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	p, ok := s.pending[runID]
	return p.fingerprint, ok
}

func (s *Service) pendingCount() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return len(s.pending)
}

// CacheSize returns the current number of cached completed runs.
func (s *Service) CacheSize() int64 {
	if s.runCache == nil {
		return 0
	}
	return s.runCache.Size()
}
