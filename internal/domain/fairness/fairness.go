// Package fairness scores election outcomes by how close the elected
// candidates sit to the voter population in issue space.
package fairness

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/psephos/internal/domain/model"
)

// Unweighted returns the inverse of the mean, over each winner, of the
// winner's mean Euclidean distance to every voter. Larger values mean
// the winners sit closer to the population.
func Unweighted(electorate *model.Electorate, candidates *model.Candidates, result *model.ElectionResult) (float64, error) {
	if electorate == nil || candidates == nil || result == nil {
		return 0, ErrNilInput
	}
	if len(result.Winners) == 0 {
		return 0, ErrNoWinners
	}

	means := make([]float64, 0, len(result.Winners))
	for _, winner := range result.Winners {
		mean, err := meanDistance(electorate, candidates, winner)
		if err != nil {
			return 0, err
		}
		means = append(means, mean)
	}

	spread := stat.Mean(means, nil)
	if spread == 0 {
		return 0, ErrZeroDistance
	}
	return 1 / spread, nil
}

// Weighted returns the inverse of the vote-share-weighted mean, over
// every candidate that received votes, of the candidate's mean
// Euclidean distance to every voter. Vote-heavy candidates dominate
// the average, so the score reflects where the electorate's support
// actually landed.
func Weighted(electorate *model.Electorate, candidates *model.Candidates, result *model.ElectionResult) (float64, error) {
	if electorate == nil || candidates == nil || result == nil {
		return 0, ErrNilInput
	}
	if result.CastVotes.Total() == 0 {
		return 0, ErrNoVotesCast
	}

	var means, weights []float64
	for _, idx := range result.CastVotes.SortedIndices() {
		votes := result.CastVotes[idx]
		if votes == 0 {
			continue
		}
		mean, err := meanDistance(electorate, candidates, idx)
		if err != nil {
			return 0, err
		}
		means = append(means, mean)
		weights = append(weights, float64(votes))
	}

	spread := stat.Mean(means, weights)
	if spread == 0 {
		return 0, ErrZeroDistance
	}
	return 1 / spread, nil
}

// meanDistance averages the Euclidean distance from one candidate,
// named by original index, to every voter.
func meanDistance(electorate *model.Electorate, candidates *model.Candidates, index int) (float64, error) {
	pos, err := candidates.PositionOf(index)
	if err != nil {
		return 0, fmt.Errorf("scoring candidate: %w", err)
	}
	distances := make([]float64, electorate.Len())
	for i := 0; i < electorate.Len(); i++ {
		distances[i] = floats.Distance(pos, electorate.Position(i), 2)
	}
	return stat.Mean(distances, nil), nil
}
