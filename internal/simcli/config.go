package simcli

import "time"

// Config holds the batch simulation parameters.
type Config struct {
	Rule               string  // Voting rule to simulate
	Issues             int     // Issue space dimensions
	Voters             int     // Electorate size
	Candidates         int     // Candidate count
	ElectorateScenario string  // Voter position distribution
	CandidateScenario  string  // Candidate position distribution
	Seed               uint64  // Base seed; sweep run r executes with Seed+r
	Apathy             float64 // Probability a voter abstains

	// Rule parameters. Zero means the rule's own default.
	ShareThreshold    float64 // Majority: share the leader must exceed
	RoundKnockouts    int     // Majority: eliminations per round
	ApprovalsPerVoter int     // Approval: approvals per voter
	Seats             int     // Proportional: seats to allocate
	MinSeatShare      float64 // Proportional: threshold share

	Runs      int    // Number of runs in the sweep
	Workers   int    // Concurrent simulation workers
	OutputDir string // Directory for the JSON results file
	LogFile   string // Log file path
	Verbose   bool   // Enable debug logging
}

// Outcome is one completed run of a sweep.
type Outcome struct {
	Run                int         `json:"run"`
	Seed               uint64      `json:"seed"`
	Winners            []int       `json:"winners"`
	Tally              map[int]int `json:"tally"`
	Rounds             int         `json:"rounds"`
	WeightedFairness   float64     `json:"weighted_fairness"`
	UnweightedFairness float64     `json:"unweighted_fairness"`
	ElapsedMS          int64       `json:"elapsed_ms"`
}

// Stats holds sweep statistics.
type Stats struct {
	RunsRequested int
	RunsCompleted int
	RunsFailed    int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
