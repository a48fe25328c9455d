package fairness_test

import (
	"math"
	"testing"

	fairness "github.com/okian/psephos/internal/domain/fairness"
	model "github.com/okian/psephos/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

// meanDist mirrors the scored quantity for hand-checked expectations.
func meanDist(voters [][]float64, candidate []float64) float64 {
	sum := 0.0
	for _, v := range voters {
		dx := v[0] - candidate[0]
		dy := v[1] - candidate[1]
		sum += math.Hypot(dx, dy)
	}
	return sum / float64(len(voters))
}

func TestFairness(t *testing.T) {
	voters := [][]float64{
		{0, 0},
		{0, 1},
		{1, 0},
		{1, 1},
	}
	cands := [][]float64{
		{0, 0.5},
		{5, 0.5},
	}

	Convey("Given a square electorate and a near and a far candidate", t, func() {
		electorate, err := model.NewElectorate(voters)
		So(err, ShouldBeNil)
		candidates, err := model.NewCandidates(cands)
		So(err, ShouldBeNil)

		Convey("When the near candidate wins", func() {
			result := &model.ElectionResult{
				Winners:   []int{0},
				CastVotes: model.VoteTally{0: 3, 1: 1},
			}

			Convey("Then unweighted fairness inverts the winner's mean distance", func() {
				got, err := fairness.Unweighted(electorate, candidates, result)
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, 1/meanDist(voters, cands[0]), tolerance)
			})

			Convey("Then weighted fairness blends every voted candidate by share", func() {
				got, err := fairness.Weighted(electorate, candidates, result)
				So(err, ShouldBeNil)
				want := 1 / ((3*meanDist(voters, cands[0]) + 1*meanDist(voters, cands[1])) / 4)
				So(got, ShouldAlmostEqual, want, tolerance)
			})

			Convey("Then both scores are strictly positive", func() {
				unweighted, err := fairness.Unweighted(electorate, candidates, result)
				So(err, ShouldBeNil)
				So(unweighted, ShouldBeGreaterThan, 0)
				weighted, err := fairness.Weighted(electorate, candidates, result)
				So(err, ShouldBeNil)
				So(weighted, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the far candidate wins instead", func() {
			near := &model.ElectionResult{Winners: []int{0}, CastVotes: model.VoteTally{0: 4}}
			far := &model.ElectionResult{Winners: []int{1}, CastVotes: model.VoteTally{1: 4}}

			Convey("Then the closer winner scores fairer", func() {
				nearScore, err := fairness.Unweighted(electorate, candidates, near)
				So(err, ShouldBeNil)
				farScore, err := fairness.Unweighted(electorate, candidates, far)
				So(err, ShouldBeNil)
				So(nearScore, ShouldBeGreaterThan, farScore)
			})
		})

		Convey("When several winners tie", func() {
			result := &model.ElectionResult{
				Winners:   []int{0, 1},
				CastVotes: model.VoteTally{0: 2, 1: 2},
			}

			Convey("Then unweighted fairness averages across the winners", func() {
				got, err := fairness.Unweighted(electorate, candidates, result)
				So(err, ShouldBeNil)
				want := 1 / ((meanDist(voters, cands[0]) + meanDist(voters, cands[1])) / 2)
				So(got, ShouldAlmostEqual, want, tolerance)
			})
		})

		Convey("When zero-vote candidates appear in the tally", func() {
			result := &model.ElectionResult{
				Winners:   []int{0},
				CastVotes: model.VoteTally{0: 4, 1: 0},
			}

			Convey("Then weighted fairness ignores them", func() {
				got, err := fairness.Weighted(electorate, candidates, result)
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, 1/meanDist(voters, cands[0]), tolerance)
			})
		})

		Convey("When nobody voted", func() {
			result := &model.ElectionResult{
				Winners:   []int{0},
				CastVotes: model.VoteTally{0: 0, 1: 0},
			}

			Convey("Then weighted fairness is a degenerate error", func() {
				_, err := fairness.Weighted(electorate, candidates, result)
				So(err, ShouldWrap, fairness.ErrNoVotesCast)
				So(err, ShouldWrap, model.ErrDegenerate)
			})
		})

		Convey("When the result names no winners", func() {
			result := &model.ElectionResult{CastVotes: model.VoteTally{0: 4}}

			Convey("Then unweighted fairness is a degenerate error", func() {
				_, err := fairness.Unweighted(electorate, candidates, result)
				So(err, ShouldWrap, fairness.ErrNoWinners)
			})
		})

		Convey("When a winner is not in the candidate set", func() {
			result := &model.ElectionResult{
				Winners:   []int{9},
				CastVotes: model.VoteTally{9: 4},
			}

			Convey("Then the unknown index surfaces", func() {
				_, err := fairness.Unweighted(electorate, candidates, result)
				So(err, ShouldWrap, model.ErrUnknownIndex)
			})
		})

		Convey("When inputs are nil", func() {
			_, err := fairness.Unweighted(nil, candidates, &model.ElectionResult{Winners: []int{0}})
			So(err, ShouldWrap, fairness.ErrNilInput)
			_, err = fairness.Weighted(electorate, nil, &model.ElectionResult{Winners: []int{0}})
			So(err, ShouldWrap, fairness.ErrNilInput)
		})
	})

	Convey("Given every voter sitting exactly on the sole candidate", t, func() {
		electorate, err := model.NewElectorate([][]float64{{1, 1}, {1, 1}})
		So(err, ShouldBeNil)
		candidates, err := model.NewCandidates([][]float64{{1, 1}})
		So(err, ShouldBeNil)
		result := &model.ElectionResult{Winners: []int{0}, CastVotes: model.VoteTally{0: 2}}

		Convey("Then the zero spread is surfaced, not an infinity", func() {
			_, err := fairness.Unweighted(electorate, candidates, result)
			So(err, ShouldWrap, fairness.ErrZeroDistance)
			_, err = fairness.Weighted(electorate, candidates, result)
			So(err, ShouldWrap, fairness.ErrZeroDistance)
		})
	})
}
