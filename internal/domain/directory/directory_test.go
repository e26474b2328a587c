package directory_test

import (
	"context"
	"testing"

	"github.com/allejo/LeagueOverseer/internal/domain/directory"
	"github.com/allejo/LeagueOverseer/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRoster_ResolveTeam(t *testing.T) {
	Convey("Given a roster with two teams", t, func() {
		ctx := context.Background()
		r := directory.NewRoster()
		r.Assign("180", 1, "Sharks")
		r.Assign("2491", 1, "Sharks")
		r.Assign("777", 2, "Comets")

		Convey("When all participants are on one team", func() {
			team, err := r.ResolveTeam(ctx, []string{"180", "2491"})
			So(err, ShouldBeNil)
			So(team, ShouldEqual, model.TeamID(1))
		})

		Convey("When participant ids carry whitespace from the wire", func() {
			team, err := r.ResolveTeam(ctx, []string{" 180 ", "2491"})
			So(err, ShouldBeNil)
			So(team, ShouldEqual, model.TeamID(1))
		})

		Convey("When participants span two teams", func() {
			_, err := r.ResolveTeam(ctx, []string{"180", "777"})
			So(err, ShouldWrap, directory.ErrAmbiguousTeam)
		})

		Convey("When a participant is unknown", func() {
			_, err := r.ResolveTeam(ctx, []string{"180", "9999"})
			So(err, ShouldWrap, directory.ErrUnresolvedTeam)
		})

		Convey("When the participant list is empty", func() {
			_, err := r.ResolveTeam(ctx, nil)
			So(err, ShouldWrap, directory.ErrUnresolvedTeam)
		})

		Convey("When a player is removed from the directory", func() {
			r.Assign("2491", 0, "")
			_, err := r.ResolveTeam(ctx, []string{"2491"})
			So(err, ShouldWrap, directory.ErrUnresolvedTeam)
		})
	})
}

func TestRoster_Members(t *testing.T) {
	Convey("Given a populated roster", t, func() {
		r := directory.NewRoster()
		r.Assign("b", 2, "Comets")
		r.Assign("a", 1, "Sharks")
		r.Assign("c", 1, "Sharks")

		Convey("Then the snapshot is ordered by player id", func() {
			members := r.Members(context.Background())
			So(members, ShouldHaveLength, 3)
			So(members[0].PlayerID, ShouldEqual, "a")
			So(members[1].PlayerID, ShouldEqual, "b")
			So(members[2].PlayerID, ShouldEqual, "c")
			So(members[2].TeamName, ShouldEqual, "Sharks")
		})
	})
}
