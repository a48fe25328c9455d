// Package types contains common types used across the application
package types

// Run lifecycle statuses reported by the API.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCached    = "cached"
)

// Entry represents a leaderboard entry: one completed run ranked by
// weighted fairness.
type Entry struct {
	Rank       int     `json:"rank"`
	RunID      string  `json:"run_id"`
	Score      float64 `json:"score"`
	Rule       string  `json:"rule,omitempty"`
	Scenario   string  `json:"scenario,omitempty"`
	Unweighted float64 `json:"unweighted_score,omitempty"`
}

// Submission acknowledges a submitted run. Result is set only when the
// submission was answered from the run cache.
type Submission struct {
	RunID  string     `json:"run_id"`
	Status string     `json:"status"`
	Result *RunStatus `json:"result,omitempty"`
}

// RunStatus is the wire shape for a single run's state and outcome.
// Outcome fields are zero until the run completes.
type RunStatus struct {
	RunID              string      `json:"run_id"`
	Status             string      `json:"status"`
	Rank               int         `json:"rank,omitempty"`
	Rule               string      `json:"rule,omitempty"`
	ElectorateScenario string      `json:"electorate_scenario,omitempty"`
	Winners            []int       `json:"winners,omitempty"`
	Tally              map[int]int `json:"tally,omitempty"`
	Rounds             int         `json:"rounds,omitempty"`
	WeightedFairness   float64     `json:"weighted_fairness,omitempty"`
	UnweightedFairness float64     `json:"unweighted_fairness,omitempty"`
	ElapsedMS          int64       `json:"elapsed_ms,omitempty"`
}
