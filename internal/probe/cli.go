package probe

import "os"

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`campusai probe
==============

Sends a fixed set of requests to a running campusai server and checks every
response: scores stay in [0,1], matches are sorted, every result names the
model that produced it, and crisis language is always escalated. When the
server has no remote access each scenario must also be repeatable.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -workers int
        Number of concurrent workers (default CPU cores)
  -repeat int
        Times each scenario is sent (default 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -report string
        Write a JSON report to this path
  -log-format string
        text or json (default "text")
  -verbose
        Log every passing scenario
  -help
        Show this help message

Examples:
  go run ./cmd/probe -url http://localhost:9080 -repeat 5 -report out/probe.json
`)
}
