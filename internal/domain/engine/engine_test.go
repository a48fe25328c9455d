package engine_test

import (
	"context"
	"testing"

	engine "github.com/okian/psephos/internal/domain/engine"
	model "github.com/okian/psephos/internal/domain/model"
	population "github.com/okian/psephos/internal/domain/population"
	voting "github.com/okian/psephos/internal/domain/voting"
	. "github.com/smartystreets/goconvey/convey"
)

func baseSpec() model.RunSpec {
	return model.RunSpec{
		Rule:               voting.NamePlurality,
		Issues:             2,
		Voters:             200,
		Candidates:         4,
		ElectorateScenario: population.ScenarioBipolar,
		CandidateScenario:  population.ScenarioUniform,
		Seed:               17,
	}
}

func TestExecute(t *testing.T) {
	Convey("Given a plurality run spec", t, func() {
		spec := baseSpec()

		Convey("When executing", func() {
			record, err := engine.Execute(context.Background(), spec)
			So(err, ShouldBeNil)

			Convey("Then the record is complete", func() {
				So(record.RunID, ShouldNotBeEmpty)
				So(record.Result, ShouldNotBeNil)
				So(len(record.Result.Winners), ShouldEqual, 1)
				So(record.WeightedFairness, ShouldBeGreaterThan, 0)
				So(record.UnweightedFairness, ShouldBeGreaterThan, 0)
				So(record.CompletedAt.IsZero(), ShouldBeFalse)
			})

			Convey("Then the whole electorate voted", func() {
				So(record.Result.CastVotes.Total(), ShouldEqual, spec.Voters)
			})
		})

		Convey("When executing the same seed twice", func() {
			first, err := engine.Execute(context.Background(), spec)
			So(err, ShouldBeNil)
			second, err := engine.Execute(context.Background(), spec)
			So(err, ShouldBeNil)

			Convey("Then the elections replay exactly", func() {
				So(first.Result.CastVotes, ShouldResemble, second.Result.CastVotes)
				So(first.Result.Winners, ShouldResemble, second.Result.Winners)
				So(first.WeightedFairness, ShouldEqual, second.WeightedFairness)
				So(first.UnweightedFairness, ShouldEqual, second.UnweightedFairness)
			})

			Convey("Then the run identities stay distinct", func() {
				So(first.RunID, ShouldNotEqual, second.RunID)
			})
		})

		Convey("When executing with a different seed", func() {
			other := spec
			other.Seed = 18
			first, err := engine.Execute(context.Background(), spec)
			So(err, ShouldBeNil)
			second, err := engine.Execute(context.Background(), other)
			So(err, ShouldBeNil)

			Convey("Then the outcomes differ", func() {
				So(first.WeightedFairness, ShouldNotEqual, second.WeightedFairness)
			})
		})
	})

	Convey("Given a majority run spec", t, func() {
		spec := baseSpec()
		spec.Rule = voting.NameMajority

		Convey("When executing", func() {
			record, err := engine.Execute(context.Background(), spec)

			Convey("Then the runoff history is on the record", func() {
				So(err, ShouldBeNil)
				So(len(record.Result.Rounds), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})

	Convey("Given a proportional run spec", t, func() {
		spec := baseSpec()
		spec.Rule = voting.NameProportional
		spec.Seats = 25
		spec.MinSeatShare = 0.01

		Convey("When executing", func() {
			record, err := engine.Execute(context.Background(), spec)

			Convey("Then every seat in the budget is allocated", func() {
				So(err, ShouldBeNil)
				So(record.Result.CastVotes.Total(), ShouldEqual, 25)
			})
		})
	})

	Convey("Given omitted scenario names", t, func() {
		spec := baseSpec()
		spec.ElectorateScenario = ""
		spec.CandidateScenario = ""

		Convey("When executing", func() {
			record, err := engine.Execute(context.Background(), spec)

			Convey("Then defaults are recorded on the spec", func() {
				So(err, ShouldBeNil)
				So(record.Spec.ElectorateScenario, ShouldEqual, population.ScenarioCentered)
				So(record.Spec.CandidateScenario, ShouldEqual, population.ScenarioUniform)
			})
		})
	})

	Convey("Given an unknown rule", t, func() {
		spec := baseSpec()
		spec.Rule = "condorcet"

		Convey("When executing", func() {
			_, err := engine.Execute(context.Background(), spec)

			Convey("Then the registry rejects it", func() {
				So(err, ShouldWrap, voting.ErrUnknownRule)
			})
		})
	})

	Convey("Given an unknown scenario", t, func() {
		spec := baseSpec()
		spec.ElectorateScenario = "anarchic"

		Convey("When executing", func() {
			_, err := engine.Execute(context.Background(), spec)

			Convey("Then synthesis rejects it", func() {
				So(err, ShouldWrap, population.ErrUnknownScenario)
			})
		})
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Given two identical specs", t, func() {
		a, b := baseSpec(), baseSpec()

		Convey("Then their fingerprints match", func() {
			So(engine.Fingerprint(a), ShouldEqual, engine.Fingerprint(b))
		})

		Convey("Then any parameter change separates them", func() {
			b.Seed = 99
			So(engine.Fingerprint(a), ShouldNotEqual, engine.Fingerprint(b))
		})

		Convey("Then default filling is applied before fingerprinting", func() {
			c := baseSpec()
			c.CandidateScenario = ""
			d := baseSpec()
			d.CandidateScenario = population.ScenarioUniform
			So(engine.Fingerprint(c), ShouldEqual, engine.Fingerprint(d))
		})
	})
}
