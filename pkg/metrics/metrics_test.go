package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/allejo/LeagueOverseer/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalManager(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Recording helpers do not panic and register on the custom registry", func() {
			So(func() {
				metrics.RecordMatchEntered()
				metrics.RecordMatchEdited()
				metrics.RecordMatchDeleted()
				metrics.RecordReportDuplicate()
				metrics.ObserveCascade(3, 1)
				metrics.ObserveCascadeDuration(2 * time.Millisecond)
				metrics.RecordEngineFailure("lock_unavailable")
				metrics.ObserveLockWait(time.Millisecond)
				metrics.RecordLockTimeout()
				metrics.RecordHTTPRequest("matches", "POST", "200")
				metrics.RecordHTTPRequestDuration("matches", "POST", "200", 1.5)
				metrics.UpdateTeamsTracked(4)
				metrics.UpdateMatchesStored(10)
			}, ShouldNotPanic)

			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestNewManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()

		So(func() {
			metrics.NewManager(
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("league"),
				metrics.WithHistogramBuckets([]float64{1, 10, 100}),
				metrics.WithPrometheusRegistry(registry),
			)
		}, ShouldNotPanic)
	})
}
