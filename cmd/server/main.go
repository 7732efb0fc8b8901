package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/campusai/internal/adapters/http/api"
	"github.com/okian/campusai/internal/adapters/http/site"
	"github.com/okian/campusai/internal/adapters/http/swagger"
	"github.com/okian/campusai/internal/adapters/inference"
	app "github.com/okian/campusai/internal/app"
	"github.com/okian/campusai/internal/config"
	"github.com/okian/campusai/internal/domain/fallback"
	"github.com/okian/campusai/internal/domain/matching"
	"github.com/okian/campusai/internal/domain/registry"
	"github.com/okian/campusai/pkg/logger"
	"github.com/okian/campusai/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	// writeSlack is added to the inference timeout; summarization may make
	// two remote attempts before answering.
	writeSlack                = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWith(os.Stdout, logger.Format(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metricsOptions(cfg)...)
	svc := newService(cfg, log)
	if !svc.HasAccess() {
		log.Warn(ctx, "no inference token configured; every capability will use its local fallback")
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeoutFor(cfg),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Bool("remote_inference", svc.HasAccess()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newService wires the inference client, registry and matching weights from cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	client := inference.New(
		inference.WithBaseURL(cfg.InferenceBaseURL),
		inference.WithToken(cfg.InferenceToken),
		inference.WithTimeout(cfg.InferenceTimeout()),
		inference.WithLogger(log.Named("inference")),
	)
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithInference(client),
		app.WithRegistry(registry.New(registry.WithOverrides(cfg.Models))),
		app.WithModerationThreshold(cfg.ModerationThreshold),
		app.WithMatchingOptions(
			matching.WithWeights(matching.Weights{
				Semantic:        cfg.SemanticWeight,
				Lexical:         cfg.LexicalWeight,
				LocationBoost:   cfg.LocationBoost,
				StrongThreshold: cfg.StrongMatchThreshold,
			}),
			matching.WithLexicalWeights(fallback.LexicalWeights{
				Overlap:         cfg.FallbackLexicalWeight,
				LocationBoost:   cfg.LocationBoost,
				StrongThreshold: cfg.FallbackStrongThreshold,
			}),
			matching.WithConcurrency(cfg.EmbedConcurrency),
		),
	)
}

// newMux registers the landing page, API docs and capability routes.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log.Named("http")),
	).Register(ctx, mux)
	return mux
}

func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithLatencyBuckets(cfg.MetricsLatencyBucketsMS),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
	}
}

func writeTimeoutFor(cfg *config.Config) time.Duration {
	return 2*cfg.InferenceTimeout() + writeSlack
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
