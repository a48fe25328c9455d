// Package worker defines worker contracts for executing queued
// simulation runs and publishing their results.
package worker

import (
	"github.com/okian/psephos/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithCompletionHook sets a callback invoked after each successfully
// completed run. The pool uses it to track throughput.
func WithCompletionHook(hook func()) Option {
	return func(w *InMemoryWorker) {
		if hook != nil {
			w.onComplete = hook
		}
	}
}
