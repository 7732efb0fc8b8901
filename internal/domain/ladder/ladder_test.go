package ladder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/campusai/internal/domain/ladder"
	. "github.com/smartystreets/goconvey/convey"
)

var errBoom = errors.New("boom")

func ok(name, v string) ladder.Rung[string] {
	return ladder.Rung[string]{Name: name, Try: func(context.Context) (string, error) { return v, nil }}
}

func fail(name string) ladder.Rung[string] {
	return ladder.Rung[string]{Name: name, Try: func(context.Context) (string, error) { return "", errBoom }}
}

func local() ladder.Final[string] {
	return ladder.Final[string]{Name: "local", Produce: func() string { return "local-value" }}
}

func TestClimb(t *testing.T) {
	Convey("Given a ladder of attempts", t, func() {
		ctx := context.Background()

		Convey("When the first rung succeeds", func() {
			v, out := ladder.Climb(ctx, []ladder.Rung[string]{ok("primary", "p"), ok("secondary", "s")}, local())

			Convey("Then later rungs are not tried", func() {
				So(v, ShouldEqual, "p")
				So(out.Step, ShouldEqual, "primary")
				So(out.Fallback, ShouldBeFalse)
				So(out.Failures, ShouldBeEmpty)
				So(out.LastFailure(), ShouldBeNil)
			})
		})

		Convey("When the primary fails and the secondary succeeds", func() {
			v, out := ladder.Climb(ctx, []ladder.Rung[string]{fail("primary"), ok("secondary", "s")}, local())

			Convey("Then the secondary value is returned with the failure recorded", func() {
				So(v, ShouldEqual, "s")
				So(out.Step, ShouldEqual, "secondary")
				So(out.Failures, ShouldHaveLength, 1)
				So(errors.Is(out.Failures[0], errBoom), ShouldBeTrue)
				So(out.Failures[0].Error(), ShouldStartWith, "primary:")
			})
		})

		Convey("When every rung fails", func() {
			v, out := ladder.Climb(ctx, []ladder.Rung[string]{fail("a"), fail("b")}, local())

			Convey("Then the final step produces the value", func() {
				So(v, ShouldEqual, "local-value")
				So(out.Step, ShouldEqual, "local")
				So(out.Fallback, ShouldBeTrue)
				So(out.Failures, ShouldHaveLength, 2)
				So(out.LastFailure().Error(), ShouldStartWith, "b:")
			})
		})

		Convey("When there are no rungs at all", func() {
			v, out := ladder.Climb(ctx, nil, local())

			Convey("Then the final step runs directly", func() {
				So(v, ShouldEqual, "local-value")
				So(out.Fallback, ShouldBeTrue)
				So(out.Failures, ShouldBeEmpty)
			})
		})

		Convey("When a rung panics", func() {
			boom := ladder.Rung[string]{Name: "wild", Try: func(context.Context) (string, error) { panic("nil map") }}
			v, out := ladder.Climb(ctx, []ladder.Rung[string]{boom}, local())

			Convey("Then it is treated as a failure", func() {
				So(v, ShouldEqual, "local-value")
				So(errors.Is(out.LastFailure(), ladder.ErrPanic), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			called := false
			r := ladder.Rung[string]{Name: "remote", Try: func(context.Context) (string, error) {
				called = true
				return "x", nil
			}}
			v, out := ladder.Climb(cctx, []ladder.Rung[string]{r}, local())

			Convey("Then no rung is started", func() {
				So(called, ShouldBeFalse)
				So(v, ShouldEqual, "local-value")
				So(errors.Is(out.LastFailure(), context.Canceled), ShouldBeTrue)
			})
		})
	})
}
