package voting_test

import (
	"context"
	"testing"

	model "github.com/okian/psephos/internal/domain/model"
	voting "github.com/okian/psephos/internal/domain/voting"
	. "github.com/smartystreets/goconvey/convey"
)

// clusters builds a one-issue electorate with the given number of
// voters sitting exactly on each candidate position, giving full
// control over the resulting tallies.
func clusters(counts []int, positions []float64) (*model.Electorate, *model.Candidates) {
	var voters [][]float64
	for i, n := range counts {
		for v := 0; v < n; v++ {
			voters = append(voters, []float64{positions[i]})
		}
	}
	var cands [][]float64
	for _, x := range positions {
		cands = append(cands, []float64{x})
	}
	e, err := model.NewElectorate(voters)
	So(err, ShouldBeNil)
	c, err := model.NewCandidates(cands)
	So(err, ShouldBeNil)
	return e, c
}

func TestPlurality(t *testing.T) {
	Convey("Given a clear favourite", t, func() {
		electorate, candidates := clusters([]int{10, 40, 50}, []float64{0, 10, 20})
		rule := voting.NewPlurality()

		Convey("When electing", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)

			Convey("Then the favourite wins", func() {
				So(err, ShouldBeNil)
				So(result.Winners, ShouldResemble, []int{2})
				So(result.CastVotes, ShouldResemble, model.VoteTally{0: 10, 1: 40, 2: 50})
			})

			Convey("And the winner's tally dominates every other", func() {
				winner := result.Winners[0]
				for idx, votes := range result.CastVotes {
					if idx == winner {
						continue
					}
					So(result.CastVotes[winner], ShouldBeGreaterThanOrEqualTo, votes)
				}
			})

			Convey("And no rounds are recorded for a single pass", func() {
				So(result.Rounds, ShouldBeNil)
			})
		})
	})

	Convey("Given the four-voter square with tied candidates", t, func() {
		electorate, candidates := square()
		rule := voting.NewPlurality()

		Convey("When electing", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)

			Convey("Then the tie resolves to the lowest index", func() {
				So(err, ShouldBeNil)
				So(result.Winners, ShouldResemble, []int{0})
				So(result.CastVotes, ShouldResemble, model.VoteTally{0: 2, 1: 2})
			})
		})
	})

	Convey("Given full apathy", t, func() {
		electorate, candidates := square()
		rule := voting.NewPlurality(voting.WithApathy(1))

		Convey("When electing", func() {
			result, err := rule.Elect(context.Background(), electorate, candidates)

			Convey("Then nobody votes and the lowest index leads the zero tally", func() {
				So(err, ShouldBeNil)
				So(result.CastVotes.Total(), ShouldEqual, 0)
				So(result.Winners, ShouldResemble, []int{0})
			})
		})
	})

	Convey("Then the rule reports its registry name", t, func() {
		So(voting.NewPlurality().Name(), ShouldEqual, voting.NamePlurality)
	})
}
