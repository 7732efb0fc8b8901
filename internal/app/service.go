// Package service exposes the portal's AI capabilities. Every operation
// returns a result for well-formed input: remote models are tried first and
// a deterministic local fallback settles the call when they fail.
package service

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/okian/campusai/internal/adapters/inference"
	"github.com/okian/campusai/internal/domain/fallback"
	"github.com/okian/campusai/internal/domain/ladder"
	"github.com/okian/campusai/internal/domain/matching"
	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/registry"
	"github.com/okian/campusai/pkg/logger"
	"github.com/okian/campusai/pkg/metrics"
)

// Inference is the remote model boundary used by the service.
type Inference interface {
	HasAccess() bool
	Summarize(ctx context.Context, modelID, text string) (string, error)
	Translate(ctx context.Context, modelID, text, srcLocale, tgtLocale string) (string, error)
	Classify(ctx context.Context, modelID, text string) ([]model.LabelScore, error)
	Embed(ctx context.Context, modelID, text string) ([]float64, error)
	Generate(ctx context.Context, modelID, prompt string, params map[string]any) (string, error)
}

// embeddingAdapter binds the service's Inference to one embedding model so
// it satisfies matching.Embedder.
type embeddingAdapter struct {
	remote  Inference
	modelID string
}

func (a *embeddingAdapter) Embed(ctx context.Context, text string) ([]float64, error) {
	return a.remote.Embed(ctx, a.modelID, text)
}

// Result paths recorded per call.
const (
	pathRemote   = "remote"
	pathFallback = "fallback"
	pathFastPath = "fast_path"
)

type counters struct {
	requests  atomic.Int64
	remote    atomic.Int64
	fallbacks atomic.Int64
	fastPaths atomic.Int64
}

// Service implements the capability operations.
type Service struct {
	remote   Inference
	registry *registry.Registry
	matcher  *matching.Engine

	// Configuration
	moderationThreshold float64
	matchingOpts        []matching.Option

	// State
	stats             map[registry.Capability]*counters
	safetyEscalations atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithInference sets the remote model client.
func WithInference(remote Inference) Option {
	return func(s *Service) {
		if remote != nil {
			s.remote = remote
		}
	}
}

// WithRegistry sets the capability to model registry.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModerationThreshold sets the score at which content is flagged.
func WithModerationThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.moderationThreshold = threshold
		}
	}
}

// WithMatchingOptions passes options through to the matching engine.
func WithMatchingOptions(opts ...matching.Option) Option {
	return func(s *Service) {
		s.matchingOpts = append(s.matchingOpts, opts...)
	}
}

// New constructs a Service. Without WithInference it runs local-only.
func New(opts ...Option) *Service {
	s := &Service{
		remote:              inference.New(),
		registry:            registry.New(),
		moderationThreshold: fallback.DefaultModerationThreshold,
		stats:               make(map[registry.Capability]*counters, len(registry.Capabilities)),
		logger:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, c := range registry.Capabilities {
		s.stats[c] = &counters{}
	}

	embedder := &embeddingAdapter{remote: s.remote, modelID: s.registry.Primary(registry.Embeddings)}
	matchingOpts := append([]matching.Option{matching.WithLogger(s.logger.Named("matching"))}, s.matchingOpts...)
	s.matcher = matching.NewEngine(embedder, matchingOpts...)

	metrics.SetAccessConfigured(s.remote.HasAccess())
	return s
}

// HasAccess reports whether remote inference is configured. It performs no I/O.
func (s *Service) HasAccess() bool {
	return s.remote.HasAccess()
}

// GetStats returns per-capability counters for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	caps := make(map[string]interface{}, len(s.stats))
	for c, n := range s.stats {
		caps[string(c)] = map[string]int64{
			"requests":  n.requests.Load(),
			"remote":    n.remote.Load(),
			"fallbacks": n.fallbacks.Load(),
			"fastPaths": n.fastPaths.Load(),
		}
	}
	return map[string]interface{}{
		"hasAccess":         s.HasAccess(),
		"models":            s.registry.Snapshot(),
		"capabilities":      caps,
		"safetyEscalations": s.safetyEscalations.Load(),
	}
}

// Models returns the configured model candidates per capability.
func (s *Service) Models() map[string][]string {
	return s.registry.Snapshot()
}

// fastPath records a call settled without any remote attempt.
func (s *Service) fastPath(ctx context.Context, c registry.Capability, tag string) {
	n := s.stats[c]
	n.requests.Add(1)
	n.fastPaths.Add(1)
	metrics.RecordCapabilityResult(string(c), pathFastPath)
	s.logger.Debug(ctx, "capability settled locally",
		logger.String("capability", string(c)),
		logger.String("model", tag))
}

// settled records how a ladder climb ended.
func (s *Service) settled(ctx context.Context, c registry.Capability, out ladder.Outcome, reason string) {
	n := s.stats[c]
	n.requests.Add(1)
	if !out.Fallback {
		n.remote.Add(1)
		metrics.RecordCapabilityResult(string(c), pathRemote)
		return
	}
	n.fallbacks.Add(1)
	metrics.RecordCapabilityResult(string(c), pathFallback)
	if reason == "" {
		reason = failureReason(out.LastFailure())
	}
	metrics.RecordFallback(string(c), reason)

	fields := []logger.Field{
		logger.String("capability", string(c)),
		logger.String("reason", reason),
		logger.Int("attempts", len(out.Failures)),
	}
	if err := out.LastFailure(); err != nil {
		fields = append(fields, logger.Error(err))
	}
	if reason == reasonNoCredentials {
		s.logger.Debug(ctx, "remote inference not configured, using local fallback", fields...)
		return
	}
	s.logger.Warn(ctx, "remote inference failed, using local fallback", fields...)
}

// Fallback reasons recorded in metrics.
const (
	reasonNoCredentials = "no_credentials"
	reasonUnsupported   = "unsupported_language"
)

func failureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, inference.ErrNoCredentials):
		return reasonNoCredentials
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, inference.ErrTransport):
		return "transport"
	case errors.Is(err, inference.ErrStatus):
		return "status"
	case errors.Is(err, inference.ErrShape):
		return "shape"
	case errors.Is(err, ladder.ErrPanic):
		return "panic"
	default:
		return "unknown"
	}
}

// remoteRungs turns model IDs into ladder rungs named after each model.
func remoteRungs[T any](ids []string, try func(ctx context.Context, modelID string) (T, error)) []ladder.Rung[T] {
	rungs := make([]ladder.Rung[T], 0, len(ids))
	for _, id := range ids {
		rungs = append(rungs, ladder.Rung[T]{
			Name: id,
			Try: func(ctx context.Context) (T, error) {
				return try(ctx, id)
			},
		})
	}
	return rungs
}
