package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSnapshotInterval sets how often the store publishes read snapshots.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithTopCacheSize bounds the top ranking kept in each snapshot.
func WithTopCacheSize(size int) Option {
	return func(s *TreapStore) {
		if size > 0 {
			s.topCacheSize = size
		}
	}
}

// WithMaxRecords caps the number of ranked runs. When the cap is
// exceeded the lowest-ranked run is evicted. Zero means unbounded.
func WithMaxRecords(limit int) Option {
	return func(s *TreapStore) {
		if limit >= 0 {
			s.maxRecords = limit
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
