package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/psephos/internal/app"
	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithCacheSize(25_000),
			service.WithSnapshotInterval(500*time.Millisecond),
			service.WithTopCacheSize(200),
			service.WithSpecDefaults(3, 5_000, 4),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SubmitRun(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When submitting a valid run spec", func() {
			spec := model.RunSpec{
				Rule:       "plurality",
				Issues:     2,
				Voters:     500,
				Candidates: 3,
				Seed:       42,
			}

			sub, err := svc.SubmitRun(ctx, spec)

			Convey("Then it should be queued with a run id", func() {
				So(err, ShouldBeNil)
				So(sub.RunID, ShouldNotBeEmpty)
				So(sub.Status, ShouldEqual, "queued")
			})
		})

		Convey("When submitting a spec with an unknown rule", func() {
			spec := model.RunSpec{
				Rule:       "dictatorship",
				Issues:     2,
				Voters:     500,
				Candidates: 3,
			}

			_, err := svc.SubmitRun(ctx, spec)

			Convey("Then it should be rejected as invalid", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, service.ErrInvalidSpec), ShouldBeTrue)
			})
		})

		Convey("When submitting a spec with out-of-range apathy", func() {
			spec := model.RunSpec{
				Rule:       "majority",
				Issues:     2,
				Voters:     500,
				Candidates: 3,
				ApathyProb: 1.5,
			}

			_, err := svc.SubmitRun(ctx, spec)

			Convey("Then it should be rejected as invalid", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, service.ErrInvalidSpec), ShouldBeTrue)
			})
		})

		Convey("When submitting a spec with an unknown scenario", func() {
			spec := model.RunSpec{
				Rule:               "plurality",
				Issues:             2,
				Voters:             500,
				Candidates:         3,
				ElectorateScenario: "quadpolar",
			}

			_, err := svc.SubmitRun(ctx, spec)

			Convey("Then it should be rejected as invalid", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, service.ErrInvalidSpec), ShouldBeTrue)
			})
		})

		Convey("When submitting a spec that omits the population shape", func() {
			spec := model.RunSpec{Rule: "Approval", Seed: 7}

			sub, err := svc.SubmitRun(ctx, spec)

			Convey("Then defaults should fill the gaps and the run should queue", func() {
				So(err, ShouldBeNil)
				So(sub.Status, ShouldEqual, "queued")
			})
		})
	})

	Convey("Given a service that has not been started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When submitting a run", func() {
			_, err := svc.SubmitRun(ctx, model.RunSpec{Rule: "plurality"})

			Convey("Then it should report the service as not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}
