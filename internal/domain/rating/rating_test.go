package rating_test

import (
	"testing"

	rating "github.com/allejo/LeagueOverseer/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFormula_ComputeDelta(t *testing.T) {
	Convey("Given a formula with the default configuration", t, func() {
		f := rating.NewFormula()

		Convey("When two evenly rated teams play a full-length match 100-50", func() {
			delta, err := f.ComputeDelta(1200, 1200, 100, 50, 30)

			Convey("Then the winner gains exactly 25", func() {
				So(err, ShouldBeNil)
				So(delta, ShouldEqual, 25)
			})
		})

		Convey("When two evenly rated teams draw", func() {
			delta, err := f.ComputeDelta(1200, 1200, 3, 3, 30)

			Convey("Then the delta is exactly zero", func() {
				So(err, ShouldBeNil)
				So(delta, ShouldEqual, 0)
			})
		})

		Convey("When an underdog wins decisively", func() {
			// Team A is rated 1400 and loses 80-90 to team B at 1200.
			upset, err := f.ComputeDelta(1400, 1200, 80, 90, 30)
			So(err, ShouldBeNil)

			even, err := f.ComputeDelta(1200, 1200, 80, 90, 30)
			So(err, ShouldBeNil)

			Convey("Then the upset moves more points than an even loss", func() {
				// Expected score for the favorite is ~0.76, so the loss
				// costs floor(50*(0-0.7597)) = -38 against -25 in an even
				// match.
				So(upset, ShouldBeLessThan, even)
				So(upset, ShouldEqual, -38)
				So(even, ShouldEqual, -25)
			})
		})

		Convey("When the higher rated team wins", func() {
			favored, err := f.ComputeDelta(1400, 1200, 5, 2, 30)
			So(err, ShouldBeNil)

			underdog, err := f.ComputeDelta(1200, 1400, 5, 2, 30)
			So(err, ShouldBeNil)

			Convey("Then the favorite gains less than the underdog would", func() {
				So(favored, ShouldBeGreaterThan, 0)
				So(underdog, ShouldBeGreaterThan, favored)
			})
		})

		Convey("When the match was a shortened 20 minute game", func() {
			full, err := f.ComputeDelta(1200, 1200, 100, 50, 30)
			So(err, ShouldBeNil)

			short, err := f.ComputeDelta(1200, 1200, 100, 50, 20)
			So(err, ShouldBeNil)

			Convey("Then the delta is two thirds, floored", func() {
				So(full, ShouldEqual, 25)
				// floor(2/3 * 25.0) = floor(16.66) = 16
				So(short, ShouldEqual, 16)
			})
		})

		Convey("When the duration is not an allowed length", func() {
			_, err := f.ComputeDelta(1200, 1200, 1, 0, 45)

			Convey("Then it fails with ErrUnsupportedDuration", func() {
				So(err, ShouldWrap, rating.ErrUnsupportedDuration)
			})
		})

		Convey("When points are negative", func() {
			_, err := f.ComputeDelta(1200, 1200, -1, 0, 30)

			Convey("Then it fails with ErrInvalidInput", func() {
				So(err, ShouldWrap, rating.ErrInvalidInput)
			})
		})

		Convey("When the loser's delta is fractional", func() {
			// Flooring is toward negative infinity, not toward zero: the
			// B-side loss mirror of a +16 win must be -17, never -16.
			win, err := f.ComputeDelta(1200, 1200, 100, 50, 20)
			So(err, ShouldBeNil)
			loss, err := f.ComputeDelta(1200, 1200, 50, 100, 20)
			So(err, ShouldBeNil)

			So(win, ShouldEqual, 16)
			So(loss, ShouldEqual, -17)
		})
	})
}

func TestFormula_Options(t *testing.T) {
	Convey("Given a formula with a custom configuration", t, func() {
		f := rating.NewFormula(
			rating.WithKFactor(32),
			rating.WithDurationWeights(map[int]float64{15: 0.5, 30: 1.0, 0: 2.0, 45: -1}),
		)

		Convey("Then the K factor applies to the raw delta", func() {
			delta, err := f.ComputeDelta(1200, 1200, 2, 1, 30)
			So(err, ShouldBeNil)
			So(delta, ShouldEqual, 16) // floor(32 * 0.5)
		})

		Convey("Then custom durations are honored", func() {
			delta, err := f.ComputeDelta(1200, 1200, 2, 1, 15)
			So(err, ShouldBeNil)
			So(delta, ShouldEqual, 8) // floor(0.5 * 32 * 0.5)
		})

		Convey("Then degenerate weight entries are dropped", func() {
			_, err := f.WeightFor(0)
			So(err, ShouldWrap, rating.ErrUnsupportedDuration)

			_, err = f.WeightFor(45)
			So(err, ShouldWrap, rating.ErrUnsupportedDuration)
		})

		Convey("Then durations outside the table are rejected", func() {
			_, err := f.ComputeDelta(1200, 1200, 2, 1, 20)
			So(err, ShouldWrap, rating.ErrUnsupportedDuration)
		})
	})
}

func TestFormula_ExpectedScore(t *testing.T) {
	Convey("Given the default formula", t, func() {
		f := rating.NewFormula()

		Convey("Equal ratings expect an even split", func() {
			So(f.ExpectedScore(1200, 1200), ShouldEqual, 0.5)
		})

		Convey("Expectations for both sides sum to one", func() {
			ea := f.ExpectedScore(1400, 1200)
			eb := f.ExpectedScore(1200, 1400)
			So(ea+eb, ShouldAlmostEqual, 1.0, 1e-9)
			So(ea, ShouldBeGreaterThan, eb)
		})

		Convey("A 200 point underdog expects about 0.24", func() {
			So(f.ExpectedScore(1200, 1400), ShouldAlmostEqual, 0.2402530733520421, 1e-9)
		})
	})
}
