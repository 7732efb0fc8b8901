// Package probe exercises a running campusai server with fixed scenarios and
// checks that every response honours the result contract.
package probe

import (
	"time"

	"github.com/okian/campusai/pkg/logger"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Workers    int           // Concurrent scenario workers
	Repeat     int           // Times each scenario is sent
	Timeout    time.Duration // HTTP request timeout
	ReportFile string        // Optional JSON report path
	Verbose    bool          // Log every scenario result
	Logger     logger.Logger // Discards output when nil
}

// status mirrors GET /status.
type status struct {
	HasAccess bool                `json:"hasAccess"`
	Models    map[string][]string `json:"models"`
}

// Result is the outcome of one scenario attempt.
type Result struct {
	Scenario string        `json:"scenario"`
	Attempt  int           `json:"attempt"`
	Status   int           `json:"status"`
	Model    string        `json:"model,omitempty"`
	Fallback bool          `json:"usedFallback"`
	Latency  time.Duration `json:"latencyNs"`
	Error    string        `json:"error,omitempty"`
	body     []byte
}

// Report summarizes a probe run.
type Report struct {
	BaseURL   string        `json:"baseUrl"`
	HasAccess bool          `json:"hasAccess"`
	Sent      int           `json:"sent"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Fallbacks int           `json:"fallbacks"`
	Duration  time.Duration `json:"durationNs"`
	Results   []Result      `json:"results"`
}
