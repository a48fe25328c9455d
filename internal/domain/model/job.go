// Package model contains domain models passed between layers.
package model

import "time"

// RunJob is a simulation request queued for asynchronous execution.
// The spec it carries is fully defaulted, so workers never have to
// consult configuration.
type RunJob struct {
	RunID       string  // unique id for result lookup and idempotency
	Spec        RunSpec // complete run parameters including the seed
	Fingerprint string  // cache key derived from the spec
	SubmittedAt time.Time
}
