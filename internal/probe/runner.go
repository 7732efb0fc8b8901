package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/campusai/pkg/logger"
)

// ErrFailed is returned by Run when at least one scenario did not pass.
var ErrFailed = errors.New("probe scenarios failed")

type job struct {
	scenario Scenario
	attempt  int
}

// Run checks the service, sends every scenario Repeat times across Workers
// goroutines and returns the report. The returned error wraps ErrFailed when
// any scenario failed; the report is still populated.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	cfg = withDefaults(cfg)
	log := cfg.Logger
	client := newHTTPClient(cfg.Timeout)
	start := time.Now()

	log.Info(ctx, "starting probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
		logger.Int("repeat", cfg.Repeat),
		logger.Duration("timeout", cfg.Timeout))

	st, err := fetchStatus(ctx, client, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("service status check failed: %w", err)
	}
	local := !st.HasAccess
	log.Info(ctx, "service is up", logger.Bool("hasAccess", st.HasAccess))

	scenarios := Scenarios()
	results := dispatch(ctx, cfg, client, scenarios, local)

	report := &Report{BaseURL: cfg.BaseURL, HasAccess: st.HasAccess, Results: results}
	if local && cfg.Repeat > 1 {
		for _, err := range checkDeterminism(results) {
			report.Results = append(report.Results, Result{Scenario: "determinism", Error: err.Error()})
		}
	}
	for _, r := range report.Results {
		if r.Attempt > 0 {
			report.Sent++
			if r.Fallback {
				report.Fallbacks++
			}
		}
		if r.Error != "" {
			report.Failed++
			log.Warn(ctx, "scenario failed",
				logger.String("scenario", r.Scenario),
				logger.Int("attempt", r.Attempt),
				logger.String("error", r.Error))
			continue
		}
		report.Passed++
		if cfg.Verbose {
			log.Info(ctx, "scenario passed",
				logger.String("scenario", r.Scenario),
				logger.String("model", r.Model),
				logger.Duration("latency", r.Latency))
		}
	}
	report.Duration = time.Since(start)

	log.Info(ctx, "probe finished",
		logger.Int("sent", report.Sent),
		logger.Int("passed", report.Passed),
		logger.Int("failed", report.Failed),
		logger.Int("fallbacks", report.Fallbacks),
		logger.Duration("duration", report.Duration))

	if cfg.ReportFile != "" {
		if err := SaveReport(cfg.ReportFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrFailed, report.Failed, len(report.Results))
	}
	return report, nil
}

func withDefaults(cfg *Config) *Config {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Repeat <= 0 {
		c.Repeat = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return &c
}

// dispatch fans jobs out to a fixed pool of workers. Results keep job order.
func dispatch(ctx context.Context, cfg *Config, client *httpClient, scenarios []Scenario, local bool) []Result {
	jobs := make(chan int)
	all := make([]job, 0, len(scenarios)*cfg.Repeat)
	for attempt := 1; attempt <= cfg.Repeat; attempt++ {
		for _, s := range scenarios {
			all = append(all, job{scenario: s, attempt: attempt})
		}
	}
	results := make([]Result, len(all))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = execute(ctx, client, cfg.BaseURL, all[idx], local)
			}
		}()
	}

	for idx := range all {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			for j := idx; j < len(all); j++ {
				results[j] = Result{Scenario: all[j].scenario.Name, Attempt: all[j].attempt, Error: ctx.Err().Error()}
			}
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func execute(ctx context.Context, client *httpClient, baseURL string, j job, local bool) Result {
	res := Result{Scenario: j.scenario.Name, Attempt: j.attempt}
	start := time.Now()
	code, body, err := client.do(ctx, http.MethodPost, baseURL+j.scenario.Path, j.scenario.Body)
	res.Latency = time.Since(start)
	res.Status = code
	res.body = body
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if code != j.scenario.Status {
		res.Error = fmt.Sprintf("status %d, want %d: %s", code, j.scenario.Status, truncate(body))
		return res
	}
	var env envelope
	if json.Unmarshal(body, &env) == nil {
		res.Model = env.Model
		res.Fallback = env.UsedFallback
	}
	if err := j.scenario.Check(body, local); err != nil {
		res.Error = err.Error()
	}
	return res
}

// checkDeterminism reports scenarios whose bodies differed between attempts.
// Without remote access every answer is local, so repeats must be identical.
func checkDeterminism(results []Result) []error {
	first := make(map[string][]byte)
	var errs []error
	for _, r := range results {
		if r.Error != "" || r.body == nil {
			continue
		}
		prev, ok := first[r.Scenario]
		if !ok {
			first[r.Scenario] = r.body
			continue
		}
		if string(prev) != string(r.body) {
			errs = append(errs, fmt.Errorf("scenario %s attempt %d differs from attempt 1", r.Scenario, r.Attempt))
		}
	}
	return errs
}

func fetchStatus(ctx context.Context, client *httpClient, baseURL string) (status, error) {
	var st status
	code, body, err := client.do(ctx, http.MethodGet, baseURL+"/status", nil)
	if err != nil {
		return st, fmt.Errorf("failed to connect to service: %w", err)
	}
	if code != http.StatusOK {
		return st, fmt.Errorf("unexpected status %d", code)
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("invalid status body: %w", err)
	}
	return st, nil
}

func truncate(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
