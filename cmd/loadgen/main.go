// Command loadgen floods a running overseer instance with synthetic
// match reports and verifies the resulting standings.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/allejo/LeagueOverseer/internal/loadtest"
	"github.com/allejo/LeagueOverseer/pkg/logger"
)

func main() {
	config := loadtest.NewConfig()

	flag.StringVar(&config.BaseURL, "url", config.BaseURL, "base URL of the service")
	flag.IntVar(&config.NumMatches, "matches", config.NumMatches, "number of match reports to submit")
	flag.IntVar(&config.NumTeams, "teams", config.NumTeams, "number of teams in the synthetic season")
	flag.IntVar(&config.Workers, "workers", config.Workers, "number of concurrent submitters")
	flag.DurationVar(&config.Timeout, "timeout", config.Timeout, "HTTP request timeout")
	flag.BoolVar(&config.Verbose, "verbose", false, "log every rejected report")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadtest.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		os.Exit(1)
	}
}
