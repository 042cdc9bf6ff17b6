package dedupe_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/AVSAkash/interview-assistant/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		key := dedupe.SubmissionKey("session-1", 2)

		Convey("Then the submission key joins session and index", func() {
			So(key, ShouldEqual, "session-1:2")
		})

		Convey("When a key is claimed for the first time", func() {
			seen := d.SeenAndRecord(ctx, key)

			Convey("Then it is newly recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a second claim is suppressed", func() {
				So(d.SeenAndRecord(ctx, key), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And after Unrecord it can be claimed again", func() {
				d.Unrecord(ctx, key)
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, key), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown key", func() {
			d.Unrecord(ctx, "nope")
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When the same index belongs to another session", func() {
			d.SeenAndRecord(ctx, dedupe.SubmissionKey("session-1", 0))
			So(d.SeenAndRecord(ctx, dedupe.SubmissionKey("session-2", 0)), ShouldBeFalse)
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))

		Convey("When more keys than the bound are claimed", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")

			Convey("Then the oldest claim is forgotten", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When a claim in the middle is released", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.Unrecord(ctx, "a")
			d.SeenAndRecord(ctx, "c")

			Convey("Then the remaining claims survive", func() {
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 5000; i++ {
			d.SeenAndRecord(ctx, dedupe.SubmissionKey("s", i))
		}
		So(d.Size(), ShouldEqual, 5000)
		So(d.SeenAndRecord(ctx, dedupe.SubmissionKey("s", 0)), ShouldBeTrue)
	})
}

func TestConcurrentClaims(t *testing.T) {
	Convey("Given a manual submit racing the countdown", t, func() {
		d := dedupe.NewInMemoryDeduper()
		key := dedupe.SubmissionKey("session-1", 3)

		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(context.Background(), key) {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one claim wins", func() {
			So(int(winners.Load()), ShouldEqual, 1)
		})
	})
}
