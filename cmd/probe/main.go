package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/campusai/internal/probe"
	"github.com/okian/campusai/pkg/logger"
)

const (
	defaultRepeat    = 2
	defaultRunBudget = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		repeat     = flag.Int("repeat", defaultRepeat, "Times each scenario is sent")
		timeout    = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		reportFile = flag.String("report", "", "Write a JSON report to this path")
		logFormat  = flag.String("log-format", string(logger.FormatText), "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log every passing scenario")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := logger.InitWith(os.Stdout, logger.Format(*logFormat)); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunBudget)
	defer cancel()

	cfg := &probe.Config{
		BaseURL:    *baseURL,
		Workers:    *workers,
		Repeat:     *repeat,
		Timeout:    *timeout,
		ReportFile: *reportFile,
		Verbose:    *verbose,
		Logger:     logger.Named("probe"),
	}

	if _, err := probe.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}
