package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/allejo/LeagueOverseer/internal/app"
	"github.com/allejo/LeagueOverseer/internal/domain/directory"
	"github.com/allejo/LeagueOverseer/internal/domain/model"
	"github.com/allejo/LeagueOverseer/internal/domain/rating"
	"github.com/allejo/LeagueOverseer/internal/domain/validate"
	"github.com/allejo/LeagueOverseer/pkg/logger"
)

var matchTime = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

func startedService(opts ...service.Option) *service.Service {
	opts = append([]service.Option{service.WithLogger(logger.Nop())}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func teamReport(a, b model.TeamID, pa, pb int) service.MatchReport {
	return service.MatchReport{
		TeamA:      a,
		TeamB:      b,
		PointsA:    pa,
		PointsB:    pb,
		Timestamp:  matchTime,
		Duration:   30,
		ReportedBy: "alezakos",
	}
}

func TestEnterMatch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := startedService()
		defer svc.Stop()

		Convey("Entering a match by team ids succeeds", func() {
			res, err := svc.EnterMatch(ctx, teamReport(1, 2, 100, 50))

			So(err, ShouldBeNil)
			So(res.MatchID, ShouldEqual, model.MatchID(1))
			So(res.Summary, ShouldEqual, "(+/- 25) Team 1 [100] vs [50] Team 2")
			So(res.Changes, ShouldHaveLength, 2)

			Convey("and the teams are rated", func() {
				team, err := svc.TeamRating(ctx, 1)
				So(err, ShouldBeNil)
				So(team.Rating, ShouldEqual, 1225)
			})
		})

		Convey("Resubmitting the same report is suppressed", func() {
			_, err := svc.EnterMatch(ctx, teamReport(1, 2, 100, 50))
			So(err, ShouldBeNil)

			_, err = svc.EnterMatch(ctx, teamReport(1, 2, 100, 50))
			So(err, ShouldWrap, service.ErrDuplicateReport)

			Convey("even with the sides swapped", func() {
				_, err := svc.EnterMatch(ctx, teamReport(2, 1, 50, 100))
				So(err, ShouldWrap, service.ErrDuplicateReport)
			})
		})

		Convey("A rejected report does not poison the dedupe cache", func() {
			bad := teamReport(1, 2, 100, 50)
			bad.Duration = 45
			_, err := svc.EnterMatch(ctx, bad)
			So(err, ShouldWrap, rating.ErrUnsupportedDuration)

			_, err = svc.EnterMatch(ctx, teamReport(1, 2, 100, 50))
			So(err, ShouldBeNil)
		})

		Convey("A report with one team on both sides is rejected", func() {
			_, err := svc.EnterMatch(ctx, teamReport(7, 7, 100, 50))

			So(err, ShouldWrap, validate.ErrSameTeam)
		})

		Convey("A report with an unresolved side is rejected", func() {
			_, err := svc.EnterMatch(ctx, teamReport(0, 2, 100, 50))

			So(err, ShouldWrap, validate.ErrUnresolvedTeam)
		})
	})
}

func TestParticipantResolution(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a populated directory", t, func() {
		svc := startedService()
		defer svc.Stop()

		svc.AssignPlayer(ctx, "kierra", 1, "Sharks")
		svc.AssignPlayer(ctx, "mahala", 1, "Sharks")
		svc.AssignPlayer(ctx, "torin", 2, "Comets")

		Convey("Participant lists resolve to their teams", func() {
			rep := service.MatchReport{
				ParticipantsA: []string{"kierra", "mahala"},
				ParticipantsB: []string{"torin"},
				PointsA:       100,
				PointsB:       50,
				Timestamp:     matchTime,
				Duration:      30,
				ReportedBy:    "game-server-3",
			}
			res, err := svc.EnterMatch(ctx, rep)

			So(err, ShouldBeNil)
			So(res.Summary, ShouldEqual, "(+/- 25) Sharks [100] vs [50] Comets")
		})

		Convey("A mixed-team side invalidates the report", func() {
			rep := service.MatchReport{
				ParticipantsA: []string{"kierra", "torin"},
				ParticipantsB: []string{"mahala"},
				PointsA:       100,
				PointsB:       50,
				Timestamp:     matchTime,
				Duration:      30,
			}
			_, err := svc.EnterMatch(ctx, rep)

			So(err, ShouldWrap, directory.ErrAmbiguousTeam)
		})

		Convey("An unknown player invalidates the report", func() {
			rep := service.MatchReport{
				ParticipantsA: []string{"nobody"},
				ParticipantsB: []string{"torin"},
				PointsA:       100,
				PointsB:       50,
				Timestamp:     matchTime,
				Duration:      30,
			}
			_, err := svc.EnterMatch(ctx, rep)

			So(err, ShouldWrap, directory.ErrUnresolvedTeam)
		})

		Convey("Removing a player drops them from the roster", func() {
			svc.AssignPlayer(ctx, "torin", 0, "")

			members := svc.RosterMembers(ctx)
			So(members, ShouldHaveLength, 2)
			So(members[0].PlayerID, ShouldEqual, "kierra")
		})
	})
}

func TestEditAndDeleteMatch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with one entered match", t, func() {
		svc := startedService()
		defer svc.Stop()

		res, err := svc.EnterMatch(ctx, teamReport(1, 2, 100, 50))
		So(err, ShouldBeNil)

		Convey("Editing the result flips the ratings", func() {
			edited, err := svc.EditMatch(ctx, res.MatchID, teamReport(1, 2, 50, 100))

			So(err, ShouldBeNil)
			So(edited.Summary, ShouldEqual, "(+/- 25) Team 2 [100] vs [50] Team 1")

			team, err := svc.TeamRating(ctx, 2)
			So(err, ShouldBeNil)
			So(team.Rating, ShouldEqual, 1225)
		})

		Convey("Deleting the match restores the baseline", func() {
			deleted, err := svc.DeleteMatch(ctx, res.MatchID, "alezakos")

			So(err, ShouldBeNil)
			So(deleted.Changes, ShouldHaveLength, 2)

			team, err := svc.TeamRating(ctx, 1)
			So(err, ShouldBeNil)
			So(team.Rating, ShouldEqual, 1200)
		})
	})
}

func TestStandingsAndStats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a few results", t, func() {
		svc := startedService()
		defer svc.Stop()

		_, err := svc.EnterMatch(ctx, teamReport(1, 2, 100, 50))
		So(err, ShouldBeNil)
		rep := teamReport(1, 3, 80, 40)
		rep.Timestamp = matchTime.Add(time.Hour)
		_, err = svc.EnterMatch(ctx, rep)
		So(err, ShouldBeNil)

		Convey("Standings are ordered by rating", func() {
			teams, err := svc.Standings(ctx)

			So(err, ShouldBeNil)
			So(teams, ShouldHaveLength, 3)
			So(teams[0].ID, ShouldEqual, model.TeamID(1))
			So(teams[0].Rating, ShouldBeGreaterThan, teams[1].Rating)
		})

		Convey("Stats reflect the stored state", func() {
			stats := svc.GetStats()

			So(stats["started"], ShouldBeTrue)
			So(stats["matchesStored"], ShouldEqual, 2)
			So(stats["dedupeTracked"], ShouldEqual, 2)
		})
	})

	Convey("Given an unknown team", t, func() {
		svc := startedService()
		defer svc.Stop()

		Convey("Its rating reads as the baseline", func() {
			team, err := svc.TeamRating(ctx, 42)

			So(err, ShouldBeNil)
			So(team.Rating, ShouldEqual, 1200)
			So(team.Name, ShouldEqual, "Team 42")
		})
	})
}

func TestServiceConfigOptions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a custom baseline and weights", t, func() {
		svc := startedService(
			service.WithBaselineRating(1000),
			service.WithKFactor(32),
			service.WithDurationWeights(map[int]float64{15: 1.0}),
		)
		defer svc.Stop()

		Convey("Only the configured duration is accepted", func() {
			rep := teamReport(1, 2, 100, 50)
			rep.Duration = 15
			res, err := svc.EnterMatch(ctx, rep)

			So(err, ShouldBeNil)
			So(res.Summary, ShouldEqual, "(+/- 16) Team 1 [100] vs [50] Team 2")

			_, err = svc.EnterMatch(ctx, teamReport(1, 2, 90, 50))
			So(err, ShouldWrap, rating.ErrUnsupportedDuration)

			team, err := svc.TeamRating(ctx, 1)
			So(err, ShouldBeNil)
			So(team.Rating, ShouldEqual, 1016)
		})
	})
}
