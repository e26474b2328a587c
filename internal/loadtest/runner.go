package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/allejo/LeagueOverseer/pkg/logger"
)

// Run executes the complete load test: health check, generation,
// submission, and a standings sanity pass.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting overseer load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("matches", config.NumMatches),
		logger.Int("teams", config.NumTeams),
		logger.Int("workers", config.Workers))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	reports := generateReports(ctx, config, stats)
	submitReports(ctx, config, reports, stats)

	if err := verifyStandings(ctx, config, stats); err != nil {
		return fmt.Errorf("standings verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.ReportsFailed > 0 {
		return fmt.Errorf("%d of %d reports failed", stats.ReportsFailed, stats.ReportsSubmitted)
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// verifyStandings pulls /standings and checks the ordering invariant and
// that every entered report is reflected in the played counters.
func verifyStandings(ctx context.Context, config *Config, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.get(ctx, config.BaseURL+"/standings")
	if err != nil {
		return fmt.Errorf("fetching standings: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("standings returned status %d", resp.StatusCode)
	}

	var teams []struct {
		TeamID int64 `json:"team_id"`
		Rating int   `json:"rating"`
		Played int   `json:"played"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&teams); err != nil {
		return fmt.Errorf("decoding standings: %w", err)
	}
	stats.TeamsInStandings = len(teams)

	totalPlayed := 0
	for i, t := range teams {
		totalPlayed += t.Played
		if i > 0 && t.Rating > teams[i-1].Rating {
			return fmt.Errorf("standings out of order at position %d", i)
		}
	}

	// Two sides per match.
	if got, want := totalPlayed, stats.ReportsEntered*2; got != want {
		return fmt.Errorf("played counters sum to %d, want %d", got, want)
	}
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.ReportsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("reportsGenerated", stats.ReportsGenerated),
		logger.Int("reportsSubmitted", stats.ReportsSubmitted),
		logger.Int("reportsEntered", stats.ReportsEntered),
		logger.Int("reportsDuplicate", stats.ReportsDuplicate),
		logger.Int("reportsRejected", stats.ReportsRejected),
		logger.Int("reportsFailed", stats.ReportsFailed),
		logger.Int("teamsInStandings", stats.TeamsInStandings),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("reportsPerSecond", perSecond))
}
