// Package runcache remembers completed runs by spec fingerprint.
package runcache

// Option applies a configuration option to the InMemoryCache.
type Option func(*inMemoryCache)

// WithMaxSize sets the maximum number of run records to keep in memory.
// If maxSize > 0: bounded mode, evicting the oldest entry when full.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(c *inMemoryCache) {
		c.maxSize = maxSize
	}
}
