package voting_test

import (
	"context"
	"testing"

	model "github.com/okian/psephos/internal/domain/model"
	voting "github.com/okian/psephos/internal/domain/voting"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMajority(t *testing.T) {
	Convey("Given a 10/40/50 split over 100 voters", t, func() {
		electorate, candidates := clusters([]int{10, 40, 50}, []float64{0, 10, 20})
		rule := voting.NewMajority()

		Convey("When electing with threshold 0.5 and one knockout per round", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)
			So(err, ShouldBeNil)

			Convey("Then round one falls short of a strict majority", func() {
				So(result.Rounds[0].Tally, ShouldResemble, model.VoteTally{0: 10, 1: 40, 2: 50})
				So(result.Rounds[0].Leader, ShouldEqual, 2)
				So(result.Rounds[0].LeaderShare, ShouldEqual, 0.5)
				So(result.Rounds[0].Eliminated, ShouldResemble, []int{0})
			})

			Convey("Then round two runs over the surviving pair and terminates", func() {
				So(len(result.Rounds), ShouldEqual, 2)
				round := result.Rounds[1]
				So(round.Tally.SortedIndices(), ShouldResemble, []int{1, 2})
				So(round.Eliminated, ShouldBeEmpty)
			})

			Convey("Then the orphaned voters migrate to their next-nearest candidate", func() {
				So(result.CastVotes, ShouldResemble, model.VoteTally{1: 50, 2: 50})
				So(result.Winners, ShouldResemble, []int{1})
			})

			Convey("Then the terminal round cleared the threshold or held two candidates", func() {
				last := result.Rounds[len(result.Rounds)-1]
				terminalPair := len(last.Tally) == 2
				So(last.LeaderShare > 0.5 || terminalPair, ShouldBeTrue)
			})
		})
	})

	Convey("Given an outright majority in the first round", t, func() {
		electorate, candidates := clusters([]int{70, 20, 10}, []float64{0, 10, 20})
		rule := voting.NewMajority()

		Convey("When electing", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)

			Convey("Then a single round settles it", func() {
				So(err, ShouldBeNil)
				So(len(result.Rounds), ShouldEqual, 1)
				So(result.Winners, ShouldResemble, []int{0})
				So(result.Rounds[0].LeaderShare, ShouldEqual, 0.7)
				So(result.Rounds[0].Eliminated, ShouldBeEmpty)
			})
		})
	})

	Convey("Given more knockouts than the floor permits", t, func() {
		electorate, candidates := clusters([]int{30, 25, 25, 20}, []float64{0, 10, 20, 30})
		rule := voting.NewMajority(voting.WithRoundKnockouts(3))

		Convey("When electing", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)
			So(err, ShouldBeNil)

			Convey("Then the clamp leaves two candidates standing", func() {
				So(len(result.Rounds[0].Eliminated), ShouldEqual, 2)
				So(result.Rounds[1].Tally.SortedIndices(), ShouldHaveLength, 2)
			})

			Convey("Then eliminations run worst-first, count ties by index", func() {
				So(result.Rounds[0].Eliminated, ShouldResemble, []int{3, 1})
			})
		})
	})

	Convey("Given eliminations, tallies keep naming original candidates", t, func() {
		// Candidate 0 is weakest and goes first; the survivors keep
		// indices 1 and 2 even though they now occupy rows 0 and 1.
		electorate, candidates := clusters([]int{5, 47, 48}, []float64{0, 10, 20})
		rule := voting.NewMajority()

		Convey("When electing", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)
			So(err, ShouldBeNil)

			Convey("Then no remapped index appears anywhere in the history", func() {
				for _, round := range result.Rounds {
					for _, idx := range round.Tally.SortedIndices() {
						So(idx, ShouldBeIn, []int{0, 1, 2})
					}
				}
				So(result.Rounds[1].Tally.SortedIndices(), ShouldResemble, []int{1, 2})
				So(result.Winners, ShouldResemble, []int{1})
			})
		})
	})

	Convey("Given a single candidate", t, func() {
		electorate, candidates := clusters([]int{10}, []float64{0})
		rule := voting.NewMajority()

		Convey("When electing", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)

			Convey("Then the only candidate wins in one terminal round", func() {
				So(err, ShouldBeNil)
				So(result.Winners, ShouldResemble, []int{0})
				So(len(result.Rounds), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		electorate, candidates := clusters([]int{10, 40, 50}, []float64{0, 10, 20})
		rule := voting.NewMajority()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When electing", func() {
			_, err := rule.Elect(ctx, electorate, candidates)

			Convey("Then the runoff reports the interruption", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, context.Canceled)
			})
		})
	})

	Convey("Then the rule reports its registry name", t, func() {
		So(voting.NewMajority().Name(), ShouldEqual, voting.NameMajority)
	})
}
