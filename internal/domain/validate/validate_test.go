package validate_test

import (
	"errors"
	"testing"

	"github.com/allejo/LeagueOverseer/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTeams(t *testing.T) {
	Convey("Given a match report with two resolved, distinct teams", t, func() {
		So(validate.Teams(1, 2), ShouldBeNil)
	})

	Convey("Given the same team on both sides", t, func() {
		err := validate.Teams(7, 7)
		So(err, ShouldWrap, validate.ErrSameTeam)
	})

	Convey("Given an unresolved side", t, func() {
		Convey("Side A unresolved", func() {
			err := validate.Teams(0, 2)
			So(err, ShouldWrap, validate.ErrUnresolvedTeam)

			var unresolved *validate.UnresolvedError
			So(errors.As(err, &unresolved), ShouldBeTrue)
			So(unresolved.Side, ShouldEqual, validate.SideA)
		})

		Convey("Side B unresolved", func() {
			err := validate.Teams(1, 0)

			var unresolved *validate.UnresolvedError
			So(errors.As(err, &unresolved), ShouldBeTrue)
			So(unresolved.Side, ShouldEqual, validate.SideB)
		})

		Convey("Both sides zero reports side A first", func() {
			var unresolved *validate.UnresolvedError
			So(errors.As(validate.Teams(0, 0), &unresolved), ShouldBeTrue)
			So(unresolved.Side, ShouldEqual, validate.SideA)
		})
	})
}
