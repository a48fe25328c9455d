package runcache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	model "github.com/okian/psephos/internal/domain/model"
	runcache "github.com/okian/psephos/internal/domain/runcache"
	. "github.com/smartystreets/goconvey/convey"
)

func record(id string) *model.RunRecord {
	return &model.RunRecord{RunID: id, WeightedFairness: 1}
}

func TestInMemoryCache(t *testing.T) {
	Convey("Given a new run cache", t, func() {
		Convey("When creating a cache with default options", func() {
			c := runcache.NewInMemoryCache()

			Convey("Then it starts empty", func() {
				So(c, ShouldNotBeNil)
				So(c.Size(), ShouldEqual, 0)
			})
		})

		Convey("When storing and looking up a record", func() {
			c := runcache.NewInMemoryCache()
			c.Store(context.Background(), "fp-1", record("run-1"))

			Convey("Then the fingerprint resolves to the record", func() {
				got, ok := c.Lookup(context.Background(), "fp-1")
				So(ok, ShouldBeTrue)
				So(got.RunID, ShouldEqual, "run-1")
				So(c.Size(), ShouldEqual, 1)
			})

			Convey("Then an unknown fingerprint misses", func() {
				_, ok := c.Lookup(context.Background(), "fp-2")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When storing the same fingerprint twice", func() {
			c := runcache.NewInMemoryCache()
			c.Store(context.Background(), "fp-1", record("run-1"))
			c.Store(context.Background(), "fp-1", record("run-2"))

			Convey("Then the record is replaced, not duplicated", func() {
				got, ok := c.Lookup(context.Background(), "fp-1")
				So(ok, ShouldBeTrue)
				So(got.RunID, ShouldEqual, "run-2")
				So(c.Size(), ShouldEqual, 1)
			})
		})

		Convey("When storing a nil record", func() {
			c := runcache.NewInMemoryCache()
			c.Store(context.Background(), "fp-1", nil)

			Convey("Then nothing is cached", func() {
				_, ok := c.Lookup(context.Background(), "fp-1")
				So(ok, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded cache at capacity", t, func() {
		c := runcache.NewInMemoryCache(runcache.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			c.Store(context.Background(), fmt.Sprintf("fp-%d", i), record(fmt.Sprintf("run-%d", i)))
		}

		Convey("When storing one more record", func() {
			c.Store(context.Background(), "fp-4", record("run-4"))

			Convey("Then the oldest entry is evicted", func() {
				So(c.Size(), ShouldEqual, 3)
				_, ok := c.Lookup(context.Background(), "fp-1")
				So(ok, ShouldBeFalse)
			})

			Convey("Then newer entries survive", func() {
				for i := 2; i <= 4; i++ {
					_, ok := c.Lookup(context.Background(), fmt.Sprintf("fp-%d", i))
					So(ok, ShouldBeTrue)
				}
			})
		})
	})

	Convey("Given a cache of size one", t, func() {
		c := runcache.NewInMemoryCache(runcache.WithMaxSize(1))
		c.Store(context.Background(), "fp-1", record("run-1"))
		c.Store(context.Background(), "fp-2", record("run-2"))

		Convey("Then only the newest entry remains", func() {
			So(c.Size(), ShouldEqual, 1)
			_, ok := c.Lookup(context.Background(), "fp-1")
			So(ok, ShouldBeFalse)
			got, ok := c.Lookup(context.Background(), "fp-2")
			So(ok, ShouldBeTrue)
			So(got.RunID, ShouldEqual, "run-2")
		})
	})

	Convey("Given an unbounded cache", t, func() {
		c := runcache.NewInMemoryCache(runcache.WithMaxSize(0))
		for i := 0; i < 500; i++ {
			c.Store(context.Background(), fmt.Sprintf("fp-%d", i), record(fmt.Sprintf("run-%d", i)))
		}

		Convey("Then nothing is evicted", func() {
			So(c.Size(), ShouldEqual, 500)
			_, ok := c.Lookup(context.Background(), "fp-0")
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given concurrent writers and readers", t, func() {
		c := runcache.NewInMemoryCache(runcache.WithMaxSize(100))
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					fp := fmt.Sprintf("fp-%d-%d", w, i)
					c.Store(context.Background(), fp, record(fp))
					c.Lookup(context.Background(), fp)
				}
			}(w)
		}
		wg.Wait()

		Convey("Then the cache respects its bound", func() {
			So(c.Size(), ShouldBeLessThanOrEqualTo, 100)
			So(c.Size(), ShouldBeGreaterThan, 0)
		})
	})
}
