package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// BenchmarkResult holds the results of a benchmark run
type BenchmarkResult struct {
	Operation     string
	TotalOps      int64
	TotalTime     time.Duration
	AvgLatency    time.Duration
	P50Latency    time.Duration
	P90Latency    time.Duration
	P95Latency    time.Duration
	P99Latency    time.Duration
	Throughput    float64 // ops/sec
	MemoryUsage   uint64  // bytes
	SnapshotCount int64
	ErrorCount    int64
	SuccessRate   float64
}

// APIPerformance tracks performance metrics for each API
type APIPerformance struct {
	Insert *BenchmarkResult
	Rank   *BenchmarkResult
	Record *BenchmarkResult
	TopN   *BenchmarkResult
	Count  *BenchmarkResult
}

// StressTestConfig holds configuration for comprehensive stress testing
type StressTestConfig struct {
	SeedRuns          int
	ConcurrentWorkers int
	TestDuration      time.Duration
	SnapshotInterval  time.Duration
	TopCacheSize      int

	// API call distribution (percentages)
	InsertRatio float64
	RankRatio   float64
	RecordRatio float64
	TopNRatio   float64
	CountRatio  float64

	// TopN query size distribution
	TopNSizes       []int
	TopNSizeWeights []float64
}

// DefaultStressTestConfig returns a configuration for comprehensive stress testing
func DefaultStressTestConfig() *StressTestConfig {
	return &StressTestConfig{
		SeedRuns:          100_000,
		ConcurrentWorkers: 64,
		TestDuration:      30 * time.Second,
		SnapshotInterval:  1 * time.Second,
		TopCacheSize:      1000,

		// Realistic distribution for a simulation service: queries dominate,
		// new runs trickle in from the workers
		InsertRatio: 0.25,
		RankRatio:   0.30,
		RecordRatio: 0.10,
		TopNRatio:   0.30,
		CountRatio:  0.05,

		// TopN size distribution (weighted towards dashboard-sized queries)
		TopNSizes:       []int{10, 25, 50, 100, 250, 500},
		TopNSizeWeights: []float64{0.35, 0.25, 0.15, 0.10, 0.10, 0.05},
	}
}

// benchRunSeq hands out unique run IDs across all stress workers.
var benchRunSeq atomic.Int64

// ComprehensiveStressTest runs a realistic stress test with all APIs under pressure
func ComprehensiveStressTest(b *testing.B, config *StressTestConfig) {
	if config == nil {
		config = DefaultStressTestConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	// Create store with configuration
	store := NewTreapStore(ctx,
		WithSnapshotInterval(config.SnapshotInterval),
		WithTopCacheSize(config.TopCacheSize),
	)
	defer func() {
		if err := store.Close(); err != nil {
			b.Errorf("failed to close store: %v", err)
		}
	}()

	// Pre-populate with completed runs using a realistic fairness distribution
	b.Logf("Pre-populating store with %d runs...", config.SeedRuns)
	start := time.Now()
	seedStore(ctx, store, config.SeedRuns)
	benchRunSeq.Store(int64(config.SeedRuns))
	b.Logf("Pre-population completed in %v", time.Since(start))

	// Run comprehensive stress test
	b.Log("Running comprehensive stress test with all APIs under pressure...")
	apiPerformance := runComprehensiveStressTest(ctx, store, config)

	// Generate detailed performance report
	generateComprehensiveReport(b, apiPerformance, config)
}

// seedStore pre-populates the store with a realistic fairness distribution.
// Most winners land a moderate distance from the electorate mean, a few land
// very close, so scores cluster low with a thin high tail.
func seedStore(ctx context.Context, store *TreapStore, count int) {
	const batchSize = 10_000
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, runtime.NumCPU()*2)

	scoreRanges := []struct {
		min, max float64
		weight   float64
	}{
		{0.05, 0.15, 0.20}, // winners far from the electorate
		{0.15, 0.30, 0.35}, // typical outcomes
		{0.30, 0.50, 0.25},
		{0.50, 0.80, 0.15},
		{0.80, 1.20, 0.05}, // near-ideal winners
	}

	for i := 0; i < count; i += batchSize {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(startIdx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			endIdx := startIdx + batchSize
			if endIdx > count {
				endIdx = count
			}

			r := rand.New(rand.NewPCG(uint64(startIdx), 0))

			for j := startIdx; j < endIdx; j++ {
				randVal := r.Float64()
				cumulativeWeight := 0.0
				selected := scoreRanges[len(scoreRanges)-1]
				for _, rng := range scoreRanges {
					cumulativeWeight += rng.weight
					if randVal <= cumulativeWeight {
						selected = rng
						break
					}
				}

				score := selected.min + r.Float64()*(selected.max-selected.min)
				_, _ = store.Insert(ctx, runRecord(fmt.Sprintf("seed_run_%d", j), score))
			}
		}(i)
	}

	wg.Wait()
}

// runComprehensiveStressTest runs all APIs simultaneously under pressure
func runComprehensiveStressTest(ctx context.Context, store *TreapStore, config *StressTestConfig) *APIPerformance {
	var wg sync.WaitGroup

	// Shared metrics collection
	insertMetrics := &MetricsCollector{}
	rankMetrics := &MetricsCollector{}
	recordMetrics := &MetricsCollector{}
	topNMetrics := &MetricsCollector{}
	countMetrics := &MetricsCollector{}

	// Start time for the entire test
	testStart := time.Now()

	// Start concurrent workers that call all APIs randomly
	for i := 0; i < config.ConcurrentWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(uint64(workerID), uint64(time.Now().UnixNano())))

			for ctx.Err() == nil {
				// Determine which API to call based on distribution
				apiChoice := r.Float64()

				switch {
				case apiChoice < config.InsertRatio:
					// Insert a freshly completed run
					runID := fmt.Sprintf("seed_run_%d", benchRunSeq.Add(1)-1)
					score := r.Float64() * 1.2

					start := time.Now()
					_, err := store.Insert(ctx, runRecord(runID, score))
					latency := time.Since(start)

					insertMetrics.Record(latency, err == nil)

				case apiChoice < config.InsertRatio+config.RankRatio:
					// Rank lookup. Evicted runs report not-found, which the
					// success rate makes visible.
					runID := fmt.Sprintf("seed_run_%d", r.IntN(config.SeedRuns))

					start := time.Now()
					_, err := store.Rank(ctx, runID)
					latency := time.Since(start)

					rankMetrics.Record(latency, err == nil)

				case apiChoice < config.InsertRatio+config.RankRatio+config.RecordRatio:
					// Full record fetch
					runID := fmt.Sprintf("seed_run_%d", r.IntN(config.SeedRuns))

					start := time.Now()
					_, err := store.Record(ctx, runID)
					latency := time.Since(start)

					recordMetrics.Record(latency, err == nil)

				case apiChoice < config.InsertRatio+config.RankRatio+config.RecordRatio+config.TopNRatio:
					// TopN operation with weighted size selection
					randVal := r.Float64()
					cumulativeWeight := 0.0
					var selectedSize int

					for i, weight := range config.TopNSizeWeights {
						cumulativeWeight += weight
						if randVal <= cumulativeWeight {
							selectedSize = config.TopNSizes[i]
							break
						}
					}
					if selectedSize == 0 {
						selectedSize = config.TopNSizes[len(config.TopNSizes)-1]
					}

					start := time.Now()
					_, err := store.TopN(ctx, selectedSize)
					latency := time.Since(start)

					topNMetrics.Record(latency, err == nil)

				default:
					// Count operation
					start := time.Now()
					_ = store.Count(ctx)
					latency := time.Since(start)

					// Count always succeeds, so no error to check
					countMetrics.Record(latency, true)
				}

				// Small random delay to prevent overwhelming
				time.Sleep(time.Duration(r.IntN(100)) * time.Microsecond)
			}
		}(i)
	}

	// Run for specified duration
	time.Sleep(config.TestDuration)
	wg.Wait()

	totalTime := time.Since(testStart)
	snapshotCount := int64(totalTime / config.SnapshotInterval)

	// Calculate results for each API
	return &APIPerformance{
		Insert: insertMetrics.CalculateResult("Insert", totalTime, snapshotCount),
		Rank:   rankMetrics.CalculateResult("Rank", totalTime, snapshotCount),
		Record: recordMetrics.CalculateResult("Record", totalTime, snapshotCount),
		TopN:   topNMetrics.CalculateResult("TopN", totalTime, snapshotCount),
		Count:  countMetrics.CalculateResult("Count", totalTime, snapshotCount),
	}
}

// MetricsCollector collects latency and success metrics for an API
type MetricsCollector struct {
	latencies  []time.Duration
	successOps int64
	totalOps   int64
	mu         sync.Mutex
}

// Record records a single operation result
func (mc *MetricsCollector) Record(latency time.Duration, success bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.latencies = append(mc.latencies, latency)
	mc.totalOps++
	if success {
		mc.successOps++
	}
}

// CalculateResult calculates benchmark results from collected metrics
func (mc *MetricsCollector) CalculateResult(operation string, totalTime time.Duration, snapshotCount int64) *BenchmarkResult {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.latencies) == 0 {
		return &BenchmarkResult{
			Operation:     operation,
			TotalOps:      mc.totalOps,
			TotalTime:     totalTime,
			SnapshotCount: snapshotCount,
			ErrorCount:    mc.totalOps - mc.successOps,
			SuccessRate:   0.0,
		}
	}

	// Sort latencies for percentile calculation
	sorted := make([]time.Duration, len(mc.latencies))
	copy(sorted, mc.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// Calculate percentiles
	p50Idx := int(float64(len(sorted)) * 0.50)
	p90Idx := int(float64(len(sorted)) * 0.90)
	p95Idx := int(float64(len(sorted)) * 0.95)
	p99Idx := int(float64(len(sorted)) * 0.99)

	// Calculate average
	var total time.Duration
	for _, lat := range mc.latencies {
		total += lat
	}
	avgLatency := total / time.Duration(len(mc.latencies))

	// Get memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	successRate := float64(mc.successOps) / float64(mc.totalOps) * 100.0

	return &BenchmarkResult{
		Operation:     operation,
		TotalOps:      mc.totalOps,
		TotalTime:     totalTime,
		AvgLatency:    avgLatency,
		P50Latency:    sorted[p50Idx],
		P90Latency:    sorted[p90Idx],
		P95Latency:    sorted[p95Idx],
		P99Latency:    sorted[p99Idx],
		Throughput:    float64(mc.totalOps) / totalTime.Seconds(),
		MemoryUsage:   m.Alloc,
		SnapshotCount: snapshotCount,
		ErrorCount:    mc.totalOps - mc.successOps,
		SuccessRate:   successRate,
	}
}

// generateComprehensiveReport generates a detailed performance report
func generateComprehensiveReport(b *testing.B, apiPerf *APIPerformance, config *StressTestConfig) {
	b.Log("\n" + strings.Repeat("=", 100))
	b.Log("RANKING STORE STRESS TEST REPORT - ALL APIs UNDER PRESSURE")
	b.Log(strings.Repeat("=", 100))
	b.Logf("Configuration:")
	b.Logf("  Seed Runs: %d", config.SeedRuns)
	b.Logf("  Concurrent Workers: %d", config.ConcurrentWorkers)
	b.Logf("  Snapshot Interval: %v", config.SnapshotInterval)
	b.Logf("  Top Cache Size: %d", config.TopCacheSize)
	b.Logf("  Test Duration: %v", config.TestDuration)
	b.Logf("  API Distribution: Insert(%.1f%%) Rank(%.1f%%) Record(%.1f%%) TopN(%.1f%%) Count(%.1f%%)",
		config.InsertRatio*100, config.RankRatio*100, config.RecordRatio*100, config.TopNRatio*100, config.CountRatio*100)
	b.Logf("")

	// API Performance Summary Table
	b.Logf("API PERFORMANCE SUMMARY:")
	b.Logf("%-15s %12s %12s %12s %12s %12s %12s %10s %10s", "API", "Total Ops", "Throughput", "Avg Latency", "P90 Latency", "P95 Latency", "P99 Latency", "Success%", "Errors")
	b.Logf("%-15s %12s %12s %12s %12s %12s %12s %10s %10s", "", "", "(ops/sec)", "(μs)", "(μs)", "(μs)", "(μs)", "", "")
	b.Log(strings.Repeat("-", 100))

	apis := []struct {
		name   string
		result *BenchmarkResult
	}{
		{"Insert", apiPerf.Insert},
		{"Rank", apiPerf.Rank},
		{"Record", apiPerf.Record},
		{"TopN", apiPerf.TopN},
		{"Count", apiPerf.Count},
	}

	for _, api := range apis {
		if api.result.TotalOps > 0 {
			b.Logf("%-15s %12d %12.0f %12d %12d %12d %12d %10.1f %10d",
				api.name,
				api.result.TotalOps,
				api.result.Throughput,
				api.result.AvgLatency.Microseconds(),
				api.result.P90Latency.Microseconds(),
				api.result.P95Latency.Microseconds(),
				api.result.P99Latency.Microseconds(),
				api.result.SuccessRate,
				api.result.ErrorCount,
			)
		}
	}

	b.Logf("")
	b.Logf("DETAILED LATENCY ANALYSIS:")
	b.Logf("")

	// Latency distribution analysis
	for _, api := range apis {
		if api.result.TotalOps > 0 {
			b.Logf("%s Latency Distribution:", api.name)
			b.Logf("  P50: %8d μs (median)", api.result.P50Latency.Microseconds())
			b.Logf("  P90: %8d μs (90%% of requests faster)", api.result.P90Latency.Microseconds())
			b.Logf("  P95: %8d μs (95%% of requests faster)", api.result.P95Latency.Microseconds())
			b.Logf("  P99: %8d μs (99%% of requests faster)", api.result.P99Latency.Microseconds())
			b.Logf("  Tail Latency (P99-P50): %8d μs", (api.result.P99Latency - api.result.P50Latency).Microseconds())
			b.Logf("")
		}
	}

	// Performance insights
	b.Logf("PERFORMANCE INSIGHTS:")

	// Find best and worst performing APIs
	var bestAPI, worstAPI *BenchmarkResult
	var bestThroughput, worstThroughput float64

	for _, api := range apis {
		if api.result.Throughput > 0 {
			if bestAPI == nil || api.result.Throughput > bestThroughput {
				bestAPI = api.result
				bestThroughput = api.result.Throughput
			}
			if worstAPI == nil || api.result.Throughput < worstThroughput {
				worstAPI = api.result
				worstThroughput = api.result.Throughput
			}
		}
	}

	if bestAPI != nil && worstAPI != nil {
		b.Logf("  Best Performance: %s (%.0f ops/sec)", bestAPI.Operation, bestAPI.Throughput)
		b.Logf("  Worst Performance: %s (%.0f ops/sec)", worstAPI.Operation, worstAPI.Throughput)
		b.Logf("  Performance Ratio: %.2fx", bestAPI.Throughput/worstAPI.Throughput)
	}

	// Latency consistency analysis
	b.Logf("")
	b.Logf("LATENCY CONSISTENCY ANALYSIS:")
	for _, api := range apis {
		if api.result.TotalOps > 0 && api.result.P50Latency > 0 {
			latencySpread := float64(api.result.P99Latency) / float64(api.result.P50Latency)
			consistency := "Good"
			if latencySpread > 10 {
				consistency = "Poor"
			} else if latencySpread > 5 {
				consistency = "Fair"
			}
			b.Logf("  %s: P99/P50 ratio = %.2fx (%s consistency)",
				api.name, latencySpread, consistency)
		}
	}

	// Memory and resource analysis
	b.Logf("")
	b.Logf("RESOURCE ANALYSIS:")
	for _, api := range apis {
		if api.result.MemoryUsage > 0 {
			b.Logf("  %s Memory Usage: %s", api.name, formatBytes(api.result.MemoryUsage))
		}
	}

	b.Logf("")
	b.Logf("SNAPSHOT IMPACT:")
	for _, api := range apis {
		if api.result.SnapshotCount > 0 {
			b.Logf("  %s: %d snapshots during test", api.name, api.result.SnapshotCount)
		}
	}

	b.Log(strings.Repeat("=", 100))
}

// formatBytes formats bytes into human-readable format
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Benchmark functions for Go's testing framework
func BenchmarkTreapStore_StressMixed(b *testing.B) {
	config := DefaultStressTestConfig()
	ComprehensiveStressTest(b, config)
}

func BenchmarkTreapStore_StressInsertHeavy(b *testing.B) {
	config := DefaultStressTestConfig()
	config.InsertRatio = 0.60 // continuous stream of completed runs
	config.RankRatio = 0.20
	config.RecordRatio = 0.05
	config.TopNRatio = 0.10
	config.CountRatio = 0.05
	ComprehensiveStressTest(b, config)
}

func BenchmarkTreapStore_StressLeaderboardHeavy(b *testing.B) {
	config := DefaultStressTestConfig()
	config.InsertRatio = 0.10
	config.RankRatio = 0.25
	config.RecordRatio = 0.05
	config.TopNRatio = 0.55 // dashboard refresh storm
	config.CountRatio = 0.05
	ComprehensiveStressTest(b, config)
}
