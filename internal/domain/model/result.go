package model

import (
	"sort"
	"time"
)

// VoteTally maps a candidate's original index to a count. Depending on
// the rule the count is raw votes, approvals, or apportioned seats.
type VoteTally map[int]int

// Total returns the sum of all counts.
func (t VoteTally) Total() int {
	sum := 0
	for _, n := range t {
		sum += n
	}
	return sum
}

// Clone returns an independent copy of the tally.
func (t VoteTally) Clone() VoteTally {
	out := make(VoteTally, len(t))
	for idx, n := range t {
		out[idx] = n
	}
	return out
}

// SortedIndices returns the tally's candidate indices in ascending order.
func (t VoteTally) SortedIndices() []int {
	indices := make([]int, 0, len(t))
	for idx := range t {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// Leader returns the candidate with the highest count. Ties resolve to
// the lowest index, so the result is stable for a given tally. ok is
// false only for an empty tally.
func (t VoteTally) Leader() (index, count int, ok bool) {
	if len(t) == 0 {
		return 0, 0, false
	}
	first := true
	for _, idx := range t.SortedIndices() {
		if first || t[idx] > count {
			index, count = idx, t[idx]
			first = false
		}
	}
	return index, count, true
}

// Weakest returns the n candidates with the lowest counts, ordered by
// ascending count then ascending index. n is clamped to the tally size.
func (t VoteTally) Weakest(n int) []int {
	indices := t.SortedIndices()
	sort.SliceStable(indices, func(i, j int) bool {
		return t[indices[i]] < t[indices[j]]
	})
	if n > len(indices) {
		n = len(indices)
	}
	return indices[:n]
}

// ElectionResult is the outcome of a single elect invocation.
type ElectionResult struct {
	// Winners holds original candidate indices in ascending order.
	// Size is at least 1; more than one entry only occurs for ties.
	Winners []int
	// CastVotes is the final round's tally. For proportional
	// representation it holds seats rather than raw votes.
	CastVotes VoteTally
	// Rounds is the runoff history for iterative rules, oldest first.
	// Single-pass rules leave it nil.
	Rounds []Round
}

// Round captures one runoff iteration for audit and testing.
type Round struct {
	Number      int
	Tally       VoteTally
	Leader      int
	LeaderShare float64
	// Eliminated lists the original indices knocked out after this
	// round. Empty for the terminal round.
	Eliminated []int
}

// RunSpec describes a complete simulation run: population shape,
// scenarios, the rule and its parameters, and the seed that makes the
// run reproducible.
type RunSpec struct {
	Rule               string
	Issues             int
	Voters             int
	Candidates         int
	ElectorateScenario string
	CandidateScenario  string
	Seed               uint64
	ApathyProb         float64

	// Rule parameters; each rule reads only its own.
	ShareThreshold    float64
	RoundKnockouts    int
	ApprovalsPerVoter int
	Seats             int
	MinSeatShare      float64
}

// RunRecord is a completed run as stored and reported.
type RunRecord struct {
	RunID              string
	Spec               RunSpec
	Result             *ElectionResult
	WeightedFairness   float64
	UnweightedFairness float64
	Elapsed            time.Duration
	CompletedAt        time.Time
}
