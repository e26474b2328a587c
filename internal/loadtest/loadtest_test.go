package loadtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/allejo/LeagueOverseer/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func TestGenerateReports(t *testing.T) {
	convey.Convey("Given a load test configuration", t, func() {
		ctx := context.Background()
		config := NewConfig()
		config.NumMatches = 200
		config.NumTeams = 8
		stats := &Stats{}

		convey.Convey("When generating reports", func() {
			reports := generateReports(ctx, config, stats)

			convey.Convey("Then it should produce the requested count", func() {
				convey.So(reports, convey.ShouldHaveLength, 200)
				convey.So(stats.ReportsGenerated, convey.ShouldEqual, 200)
			})

			convey.Convey("And every report should be well formed", func() {
				seen := make(map[string]bool, len(reports))
				for _, rep := range reports {
					convey.So(rep.TeamA, convey.ShouldNotEqual, rep.TeamB)
					convey.So(rep.TeamA, convey.ShouldBeBetweenOrEqual, 1, int64(config.NumTeams))
					convey.So(rep.TeamB, convey.ShouldBeBetweenOrEqual, 1, int64(config.NumTeams))
					convey.So(rep.PointsA, convey.ShouldBeGreaterThanOrEqualTo, 0)
					convey.So(rep.PointsB, convey.ShouldBeGreaterThanOrEqualTo, 0)
					convey.So(rep.Duration, convey.ShouldBeIn, 30, 20)

					_, err := time.Parse(time.RFC3339, rep.TS)
					convey.So(err, convey.ShouldBeNil)

					convey.So(seen[rep.TS], convey.ShouldBeFalse)
					seen[rep.TS] = true
				}
			})
		})
	})
}

func TestSubmitReports(t *testing.T) {
	convey.Convey("Given a server with a mixed response pattern", t, func() {
		ctx := context.Background()

		var calls int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch atomic.AddInt64(&calls, 1) % 4 {
			case 0:
				w.WriteHeader(http.StatusConflict)
			case 1:
				w.WriteHeader(http.StatusUnprocessableEntity)
			default:
				w.WriteHeader(http.StatusCreated)
			}
		}))
		defer srv.Close()

		config := NewConfig()
		config.BaseURL = srv.URL
		config.NumMatches = 40
		config.NumTeams = 8
		config.Workers = 4
		stats := &Stats{}

		convey.Convey("When submitting generated reports", func() {
			reports := generateReports(ctx, config, stats)
			submitReports(ctx, config, reports, stats)

			convey.Convey("Then every report should be classified", func() {
				convey.So(stats.ReportsSubmitted, convey.ShouldEqual, 40)
				total := stats.ReportsEntered + stats.ReportsDuplicate +
					stats.ReportsRejected + stats.ReportsFailed
				convey.So(total, convey.ShouldEqual, 40)
				convey.So(stats.ReportsEntered, convey.ShouldEqual, 20)
				convey.So(stats.ReportsDuplicate, convey.ShouldEqual, 10)
				convey.So(stats.ReportsRejected, convey.ShouldEqual, 10)
				convey.So(stats.ReportsFailed, convey.ShouldEqual, 0)
			})
		})
	})
}

func TestCheckServiceHealth(t *testing.T) {
	convey.Convey("Given a healthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		config := NewConfig()
		config.BaseURL = srv.URL

		convey.Convey("Then the health check should pass", func() {
			convey.So(checkServiceHealth(context.Background(), config), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an unreachable service", t, func() {
		config := NewConfig()
		config.BaseURL = "http://127.0.0.1:1"
		config.Timeout = time.Second

		convey.Convey("Then the health check should fail", func() {
			convey.So(checkServiceHealth(context.Background(), config), convey.ShouldNotBeNil)
		})
	})
}
