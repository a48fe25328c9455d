// Package repository defines the run ranking store interface and errors.
package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: weighted fairness DESC, then runID ASC (deterministic).
// We implement a BST comparator where "less" means ranks earlier
// (i.e., fairer outcomes rank earlier). This makes in-order traversal
// produce the leaderboard from fairest to least fair.

// scoreScale controls fixed-point scaling from float64. Fairness
// scores live well inside this range, so twelve decimal places keep
// distinct runs distinct.
const scoreScale = 1_000_000_000_000

// defaultMaxRecords caps the ranking so a long-lived service does not
// accumulate run history without bound.
const defaultMaxRecords = 100_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * scoreScale
	if scaled > float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// record pairs the fixed-point ranking score with the stored run.
type record struct {
	score scoreFP
	run   *model.RunRecord
}

// Snapshot represents an immutable snapshot of the ranking state.
type Snapshot struct {
	// Rank and score in O(1) for reads
	RankByRun  map[string]int
	ScoreByRun map[string]float64

	// Fast Top-K cache up to M items
	TopCache []Entry // sorted descending (M is much smaller than the full ranking)
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID)
// in the leaderboard (fairer runs first).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore // higher fairness ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority converts a score to a priority value.
// Fairer runs get higher priorities to keep them higher in the treap.
func scoreToPriority(score scoreFP) uint64 {
	// Shift negative scores into the positive range first.
	const offset = uint64(1) << 63
	return uint64(score) + offset
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// entryOf builds a leaderboard row from a stored run. Rank is filled
// in by the caller once the surrounding ordering is known.
func entryOf(id string, rec record) Entry {
	return Entry{
		RunID:      id,
		Score:      toFloat(rec.score),
		Rule:       rec.run.Spec.Rule,
		Scenario:   rec.run.Spec.ElectorateScenario,
		Unweighted: rec.run.UnweightedFairness,
	}
}

// collectTopN appends up to limit entries in rank order (fairest first).
// The BST ordering already applies the deterministic runID tie-break.
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	collectTopN(n.left, limit, records, out)

	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, entryOf(n.id, rec))
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

type TreapStore struct {
	mu                    sync.RWMutex
	root                  *node
	byID                  map[string]record
	snapshotInterval      time.Duration // How often to publish read snapshots
	topCacheSize          int           // Maximum number of top-ranked runs to keep in each snapshot
	maxRecords            int           // Ranked run cap; zero disables eviction
	metricsUpdateInterval time.Duration // How often background metrics refresh

	// snapshot is atomic pointer to a Snapshot struct
	snapshot atomic.Pointer[Snapshot]

	// Periodic snapshot management
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		snapshotInterval:      1 * time.Second,
		topCacheSize:          500,
		maxRecords:            defaultMaxRecords,
		metricsUpdateInterval: 5 * time.Second,
		byID:                  make(map[string]record),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	// Initialize stop channel and start periodic snapshot goroutine
	s.stopChan = make(chan struct{})
	s.startPeriodicSnapshots(ctx)

	// Initialize metrics
	metrics.UpdateRepositoryRecordsTotal(0)
	s.startMetricsUpdater(ctx)

	return s
}

// startPeriodicSnapshots starts a background goroutine that publishes snapshots at the configured interval
func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishSnapshot()
			}
		}
	}()
}

// publishSnapshot rebuilds and publishes a new snapshot
func (s *TreapStore) publishSnapshot() {
	start := time.Now()
	s.mu.RLock()
	s.publishSnapshotInternal()
	s.mu.RUnlock()

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordRepositorySnapshotRebuildDuration(ms)
	metrics.UpdateRepositorySnapshotLastDurationMs(ms)
	metrics.UpdateRepositorySnapshotLastUnix(float64(time.Now().Unix()))
	metrics.IncrementRepositorySnapshotCount()
}

// Close gracefully shuts down the periodic snapshot goroutine
func (s *TreapStore) Close() error {
	// Signal all goroutines to stop
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Insert implements Store.Insert with O(log n) expected time. Re-ranking
// an already ranked run is a no-op: records are immutable once written.
func (s *TreapStore) Insert(ctx context.Context, rec *model.RunRecord) (bool, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryUpdateLatency(float64(latency))
	}()

	if rec == nil {
		return false, ErrNilRecord
	}

	ns := toFixedPoint(rec.WeightedFairness)

	s.mu.Lock()
	if _, ok := s.byID[rec.RunID]; ok {
		s.mu.Unlock()
		return false, nil
	}
	s.byID[rec.RunID] = record{score: ns, run: rec}
	s.root = insert(s.root, rec.RunID, ns)
	for s.maxRecords > 0 && len(s.byID) > s.maxRecords {
		s.evictWorst()
	}
	s.mu.Unlock()

	// Update metrics outside lock
	metrics.UpdateRepositoryRecordsTotal(s.Count(ctx))

	// Snapshots are published periodically, not after every insert
	return true, nil
}

// evictWorst drops the lowest-ranked run. Caller holds s.mu.
func (s *TreapStore) evictWorst() {
	worst := s.root
	if worst == nil {
		return
	}
	for worst.right != nil {
		worst = worst.right
	}
	delete(s.byID, worst.id)
	s.root = deleteNode(s.root, worst.id, worst.score)
}

// Rank returns the current rank and score for a run in O(n log n).
func (s *TreapStore) Rank(ctx context.Context, runID string) (Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Check if the run exists
	if _, ok := s.byID[runID]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	// Collect all entries and find the rank
	allEntries := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &allEntries)

	// Sort all entries by score (descending) and runID (ascending) to match TopN logic
	sortEntries(allEntries)

	// Assign global ranks with proper tie handling
	assignRanksWithTies(allEntries)

	// Find the rank for this specific run
	for _, entry := range allEntries {
		if entry.RunID == runID {
			return entry, nil
		}
	}

	return Entry{}, ErrNotFound
}

// Record returns the full stored record for a run in O(1).
func (s *TreapStore) Record(ctx context.Context, runID string) (*model.RunRecord, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[runID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	return rec.run, nil
}

// TopN returns the top N entries ordered by fairness desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryQueryLatency(float64(latency))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)

	// Assign ranks with proper tie handling
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of ranked runs.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// publishSnapshotInternal rebuilds and publishes a new snapshot (assumes lock is held)
func (s *TreapStore) publishSnapshotInternal() {
	// Build Top-M cache for fast dashboard queries
	topCache := make([]Entry, 0, s.topCacheSize)
	collectTopN(s.root, s.topCacheSize, s.byID, &topCache)

	// Build full rank and score maps
	rankByRun := make(map[string]int, len(s.byID))
	scoreByRun := make(map[string]float64, len(s.byID))

	// Collect all entries to compute global ranks
	allEntries := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &allEntries)

	// Assign ranks with proper tie handling
	assignRanksWithTies(allEntries)

	// Build maps from all entries
	for _, entry := range allEntries {
		rankByRun[entry.RunID] = entry.Rank
		scoreByRun[entry.RunID] = entry.Score
	}

	// Update TopCache with correct ranks
	for i := range topCache {
		if rank, exists := rankByRun[topCache[i].RunID]; exists {
			topCache[i].Rank = rank
		}
	}

	snapshot := &Snapshot{
		RankByRun:  rankByRun,
		ScoreByRun: scoreByRun,
		TopCache:   topCache,
	}

	s.snapshot.Store(snapshot)
}

// startMetricsUpdater starts a background goroutine that updates repository metrics
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics refreshes the gauges derived from ranking size.
func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	recordCount := len(s.byID)
	s.mu.RUnlock()

	metrics.UpdateRepositoryRecordsTotal(recordCount)
	metrics.UpdateTotalRuns(recordCount)
}

// collectAll appends all entries in rank order (fairest first).
func collectAll(n *node, byID map[string]record, out *[]Entry) {
	if n == nil {
		return
	}
	// Traverse left subtree first (fairer runs)
	collectAll(n.left, byID, out)
	// Add current node
	if rec, ok := byID[n.id]; ok {
		*out = append(*out, entryOf(n.id, rec))
	}
	// Traverse right subtree (less fair runs)
	collectAll(n.right, byID, out)
}

// sortEntries sorts entries by score (descending) and runID (ascending) to match TopN logic
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		// Higher score comes first (descending order)
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		// Tie-breaker: runID in ascending order
		return entries[i].RunID < entries[j].RunID
	})
}

// assignRanksWithTies assigns ranks with proper tie handling.
// Runs with the same score get the same rank, and the next distinct
// score takes the following rank.
func assignRanksWithTies(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	currentRank := 1
	for i := 0; i < len(entries); i++ {
		// Assign current rank to this entry
		entries[i].Rank = currentRank

		// Count how many entries have the same score as this one
		sameScoreCount := 1
		for j := i + 1; j < len(entries) && entries[j].Score == entries[i].Score; j++ {
			entries[j].Rank = currentRank
			sameScoreCount++
		}

		// Move to the next rank (consecutive ranking)
		currentRank++
		i += sameScoreCount - 1 // Skip the entries we just processed
	}
}
