// Package runcache remembers completed runs by spec fingerprint.
// Simulations are deterministic under a seed, so a repeated submission
// of an identical spec can be served from memory instead of recomputed.
package runcache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/psephos/internal/domain/model"
)

// Cache maps spec fingerprints to completed run records.
type Cache interface {
	// Lookup returns the cached record for a fingerprint, if any.
	Lookup(ctx context.Context, fingerprint string) (*model.RunRecord, bool)

	// Store records a completed run under its fingerprint. Storing an
	// already-present fingerprint replaces the record in place.
	Store(ctx context.Context, fingerprint string, record *model.RunRecord)

	Size() int64
}

// node is a single entry in the eviction list.
type node struct {
	fingerprint string
	record      *model.RunRecord
	next        *node
}

// reset clears the node state for reuse.
func (n *node) reset() {
	n.fingerprint = ""
	n.record = nil
	n.next = nil
}

// inMemoryCache implements Cache with a map plus a linked list that
// evicts the oldest entry once the bound is reached.
// For bounded mode (maxSize > 0): eviction list plus sync.Pool for nodes.
// For unbounded mode (maxSize <= 0): plain map, no eviction.
type inMemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*node
	head     *node // most recently stored; unused in unbounded mode
	maxSize  int   // maximum number of records to keep (0 or negative = UNBOUNDED)
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryCache creates a new in-memory run cache with
// configuration options.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: 10000, // default max size
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*node)

	// Node reuse only matters when eviction churns entries.
	if c.maxSize > 0 {
		c.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}

	return c
}

// Lookup returns the cached record for a fingerprint, if any.
func (c *inMemoryCache) Lookup(_ context.Context, fingerprint string) (*model.RunRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	return n.record, true
}

// Store records a completed run under its fingerprint.
func (c *inMemoryCache) Store(_ context.Context, fingerprint string, record *model.RunRecord) {
	if record == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[fingerprint]; ok {
		existing.record = record
		return
	}

	if c.maxSize > 0 {
		// BOUNDED MODE: evict the oldest entry before adding a new one.
		if len(c.entries) >= c.maxSize {
			c.evictOldest()
		}

		n := c.nodePool.Get().(*node)
		n.fingerprint = fingerprint
		n.record = record
		n.next = c.head

		c.head = n
		c.entries[fingerprint] = n
	} else {
		// UNBOUNDED MODE: map only, no eviction list.
		c.entries[fingerprint] = &node{fingerprint: fingerprint, record: record}
	}
	c.size.Add(1)
}

// evictOldest removes the earliest-stored entry (tail of the list).
// Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	if len(c.entries) == 0 || c.head == nil {
		return
	}

	// Single entry: drop it and clear the list.
	if c.head.next == nil {
		delete(c.entries, c.head.fingerprint)
		c.head.reset()
		c.nodePool.Put(c.head)
		c.head = nil
		c.size.Add(-1)
		return
	}

	// Walk to the second-to-last node.
	prev := c.head
	for prev.next.next != nil {
		prev = prev.next
	}

	tail := prev.next
	prev.next = nil
	delete(c.entries, tail.fingerprint)
	tail.reset()
	c.nodePool.Put(tail)
	c.size.Add(-1)
}

// Size returns the current number of cached records.
func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}
