// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the in-memory simulation job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of simulation workers.
	WorkerCount int `koanf:"worker_count"`

	// ResultCacheSize sets the size of the completed-run cache.
	ResultCacheSize int `koanf:"cache_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?n.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SnapshotIntervalMS controls how often the run repository publishes
	// read snapshots.
	SnapshotIntervalMS int `koanf:"snapshot_interval_ms"`

	// TopCacheSize bounds the repository's cached top ranking.
	TopCacheSize int `koanf:"top_cache_size"`

	// DefaultIssues, DefaultVoters, and DefaultCandidates fill run
	// submissions that omit the population dimensions.
	DefaultIssues     int `koanf:"default_issues"`
	DefaultVoters     int `koanf:"default_voters"`
	DefaultCandidates int `koanf:"default_candidates"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		JobQueueSize:        10_000,
		WorkerCount:         runtime.NumCPU(),
		ResultCacheSize:     10_000,
		MaxLeaderboardLimit: 100,
		SnapshotIntervalMS:  1_000,
		TopCacheSize:        500,
		DefaultIssues:       2,
		DefaultVoters:       10_000,
		DefaultCandidates:   2,
	}
	return c
}
