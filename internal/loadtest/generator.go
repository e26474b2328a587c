package loadtest

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/allejo/LeagueOverseer/pkg/logger"
)

// Report mirrors the wire schema for POST /matches.
type Report struct {
	TeamA      int64  `json:"team_a"`
	TeamB      int64  `json:"team_b"`
	PointsA    int    `json:"points_a"`
	PointsB    int    `json:"points_b"`
	TS         string `json:"ts"`
	Duration   int    `json:"duration"`
	ReportedBy string `json:"reported_by"`
}

// Score shape cases. Draws and shortened matches are deliberately
// over-represented compared to a real season to push the engine's edge
// cases.
const (
	caseBlowout = 0
	caseClose   = 1
	caseDraw    = 2
	caseShutout = 3
)

func randomInt(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// generateReports builds a synthetic season: every report pairs two
// distinct teams, and timestamps step backwards from now so a portion of
// the submissions arrive out of chronological order and force cascades.
func generateReports(ctx context.Context, config *Config, stats *Stats) []Report {
	logger.Get().Info(ctx, "generating match reports",
		logger.Int("matches", config.NumMatches),
		logger.Int("teams", config.NumTeams))

	seasonEnd := time.Now().UTC().Truncate(time.Minute)
	reports := make([]Report, config.NumMatches)
	for i := range reports {
		teamA := randomInt(int64(config.NumTeams)) + 1
		teamB := randomInt(int64(config.NumTeams)) + 1
		for teamB == teamA {
			teamB = randomInt(int64(config.NumTeams)) + 1
		}

		pointsA, pointsB := randomScore()
		duration := 30
		if randomInt(4) == 0 {
			duration = 20
		}

		// Each report gets its own minute so fingerprints stay unique.
		ts := seasonEnd.Add(-time.Duration(i) * time.Minute)

		reports[i] = Report{
			TeamA:      teamA,
			TeamB:      teamB,
			PointsA:    pointsA,
			PointsB:    pointsB,
			TS:         ts.Format(time.RFC3339),
			Duration:   duration,
			ReportedBy: "loadgen",
		}
	}

	stats.ReportsGenerated = len(reports)
	return reports
}

// randomScore picks a score pair with a varied outcome distribution.
func randomScore() (int, int) {
	switch randomInt(4) {
	case caseBlowout:
		return 100 + int(randomInt(100)), int(randomInt(30))
	case caseClose:
		base := 40 + int(randomInt(40))
		return base + 5, base
	case caseDraw:
		base := 30 + int(randomInt(50))
		return base, base
	case caseShutout:
		return 50 + int(randomInt(50)), 0
	default:
		return int(randomInt(100)), int(randomInt(100))
	}
}
