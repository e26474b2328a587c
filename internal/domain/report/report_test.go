package report_test

import (
	"testing"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
	"github.com/allejo/LeagueOverseer/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummarize(t *testing.T) {
	Convey("Given a change set from a recompute", t, func() {
		set := model.RatingChangeSet{
			3: {Name: "Zephyrs", Old: 1190, New: 1210},
			1: {Name: "Comets", Old: 1225, New: 1200},
			2: {Name: "Sharks", Old: 1200, New: 1200},
		}

		changes := report.Summarize(set)

		Convey("Then teams are ordered by name", func() {
			So(changes, ShouldHaveLength, 2)
			So(changes[0].TeamName, ShouldEqual, "Comets")
			So(changes[1].TeamName, ShouldEqual, "Zephyrs")
		})

		Convey("Then deltas are signed old-to-new movements", func() {
			So(changes[0].Delta, ShouldEqual, -25)
			So(changes[1].Delta, ShouldEqual, 20)
		})

		Convey("Then unmoved teams are omitted", func() {
			for _, c := range changes {
				So(c.TeamID, ShouldNotEqual, model.TeamID(2))
			}
		})
	})

	Convey("Given an empty change set", t, func() {
		So(report.Summarize(nil), ShouldBeEmpty)
	})

	Convey("Given duplicate team names", t, func() {
		set := model.RatingChangeSet{
			9: {Name: "Sharks", Old: 1200, New: 1210},
			4: {Name: "Sharks", Old: 1200, New: 1190},
		}

		changes := report.Summarize(set)

		Convey("Then ties are broken by team id", func() {
			So(changes[0].TeamID, ShouldEqual, model.TeamID(4))
			So(changes[1].TeamID, ShouldEqual, model.TeamID(9))
		})
	})
}

func TestMatchLine(t *testing.T) {
	Convey("Given a finished match", t, func() {
		Convey("The winner is printed first", func() {
			So(report.MatchLine("Sharks", 5, "Comets", 2, 25),
				ShouldEqual, "(+/- 25) Sharks [5] vs [2] Comets")
			So(report.MatchLine("Sharks", 2, "Comets", 5, -25),
				ShouldEqual, "(+/- 25) Comets [5] vs [2] Sharks")
		})

		Convey("A draw keeps the reported order", func() {
			So(report.MatchLine("Sharks", 3, "Comets", 3, 0),
				ShouldEqual, "(+/- 0) Sharks [3] vs [3] Comets")
		})
	})
}
