package config_test

import (
	"testing"

	"github.com/allejo/LeagueOverseer/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.StoreDSN, convey.ShouldBeEmpty)
			convey.So(cfg.BaselineRating, convey.ShouldEqual, 1200)
			convey.So(cfg.KFactor, convey.ShouldEqual, 50)
			convey.So(cfg.LockWaitMS, convey.ShouldEqual, 5000)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 4096)
			convey.So(cfg.RecordEditHistory, convey.ShouldBeTrue)
		})

		convey.Convey("Then the default weight table parses", func() {
			weights, err := cfg.DurationWeightTable()

			convey.So(err, convey.ShouldBeNil)
			convey.So(weights[30], convey.ShouldEqual, 1.0)
			convey.So(weights[20], convey.ShouldAlmostEqual, 2.0/3.0)
		})
	})
}

func TestConfig_DurationWeightTable(t *testing.T) {
	convey.Convey("Given a config with custom duration weights", t, func() {
		cfg := config.New()

		convey.Convey("A non-numeric key is rejected", func() {
			cfg.DurationWeights = map[string]float64{"half": 0.5}

			_, err := cfg.DurationWeightTable()

			convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
		})

		convey.Convey("A non-positive weight is rejected", func() {
			cfg.DurationWeights = map[string]float64{"15": 0}

			_, err := cfg.DurationWeightTable()

			convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
