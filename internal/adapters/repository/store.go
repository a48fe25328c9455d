// Package repository defines the run ranking store interface and errors.
package repository

import (
	"context"

	"github.com/okian/psephos/internal/domain/model"
)

// Entry represents a fairness leaderboard row.
type Entry struct {
	Rank       int
	RunID      string
	Score      float64
	Rule       string
	Scenario   string
	Unweighted float64
}

// Store provides read/write access to the run ranking state.
type Store interface {
	// Insert ranks a completed run by its weighted fairness score.
	// Returns false if the run was already ranked, true otherwise.
	Insert(ctx context.Context, rec *model.RunRecord) (bool, error)

	// Rank returns the current rank and score for a run.
	// Returns ErrNotFound if the run is unknown.
	Rank(ctx context.Context, runID string) (Entry, error)

	// Record returns the full stored record for a run.
	// Returns ErrNotFound if the run is unknown.
	Record(ctx context.Context, runID string) (*model.RunRecord, error)

	// TopN returns the top-N entries ordered by fairness desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of runs tracked in the ranking.
	Count(ctx context.Context) int
}
