// Package loadtest floods a running overseer instance with synthetic
// match reports and checks the resulting standings for consistency.
package loadtest

import (
	"runtime"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultNumMatches = 1000
	DefaultNumTeams   = 32
	DefaultTimeout    = 30 * time.Second
)

// Config controls one load test run.
type Config struct {
	// BaseURL of the running service.
	BaseURL string

	// NumMatches to generate and submit.
	NumMatches int

	// NumTeams participating in the synthetic season.
	NumTeams int

	// Workers submitting reports concurrently.
	Workers int

	// Timeout per HTTP request.
	Timeout time.Duration

	// Verbose enables per-report logging.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		NumMatches: DefaultNumMatches,
		NumTeams:   DefaultNumTeams,
		Workers:    runtime.NumCPU() * 2,
		Timeout:    DefaultTimeout,
	}
}

// Stats accumulates the outcome of a run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	ReportsGenerated int
	ReportsSubmitted int
	ReportsEntered   int
	ReportsDuplicate int
	ReportsRejected  int
	ReportsFailed    int

	TeamsInStandings int
}
