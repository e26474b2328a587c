package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/allejo/LeagueOverseer/pkg/logger"
)

// httpClient wraps http.Client with a per-request timeout.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return c.client.Do(req)
}

func (c *httpClient) postJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// submitReports pushes reports through a bounded worker pool and
// classifies every response.
func submitReports(ctx context.Context, config *Config, reports []Report, stats *Stats) {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/matches"

	var (
		submitted int64
		entered   int64
		duplicate int64
		rejected  int64
		failed    int64
	)

	reportChan := make(chan Report, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rep := range reportChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&submitted, 1)
				switch submitSingleReport(ctx, client, url, rep) {
				case http.StatusCreated:
					atomic.AddInt64(&entered, 1)
				case http.StatusConflict:
					atomic.AddInt64(&duplicate, 1)
				case http.StatusUnprocessableEntity, http.StatusBadRequest:
					atomic.AddInt64(&rejected, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "report rejected",
							logger.Int64("teamA", rep.TeamA),
							logger.Int64("teamB", rep.TeamB))
					}
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(reportChan)
		for _, rep := range reports {
			select {
			case <-ctx.Done():
				return
			case reportChan <- rep:
			}
		}
	}()

	wg.Wait()

	stats.ReportsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ReportsEntered = int(atomic.LoadInt64(&entered))
	stats.ReportsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ReportsRejected = int(atomic.LoadInt64(&rejected))
	stats.ReportsFailed = int(atomic.LoadInt64(&failed))
}

// submitSingleReport returns the HTTP status of one submission, or 0 on
// transport failure. 503 responses (scope contention) are retried a few
// times before counting as failed.
func submitSingleReport(ctx context.Context, client *httpClient, url string, rep Report) int {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := client.postJSON(ctx, url, rep)
		if err != nil {
			return 0
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusServiceUnavailable {
			return resp.StatusCode
		}

		select {
		case <-ctx.Done():
			return resp.StatusCode
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return http.StatusServiceUnavailable
}
