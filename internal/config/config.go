// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and environment on top.
// - Every threshold and weight used by the capabilities is configurable.
// - Errors returned from Load wrap this package's sentinel errors.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MaxBodyBytes caps accepted request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// InferenceBaseURL is the model-serving endpoint; requests go to {base}/{modelId}.
	InferenceBaseURL string `koanf:"inference_base_url"`

	// InferenceToken authenticates remote calls. Empty means local-only mode.
	InferenceToken string `koanf:"inference_token"`

	// InferenceTimeoutMS bounds each remote attempt.
	InferenceTimeoutMS int `koanf:"inference_timeout_ms"`

	// Models overrides the registry per capability (summarization, moderation,
	// embeddings, translation, checkin). Lists are tried in order.
	Models map[string][]string `koanf:"models"`

	// ModerationThreshold flags content whose effective score reaches it.
	ModerationThreshold float64 `koanf:"moderation_threshold"`

	// Semantic ranking blend.
	SemanticWeight       float64 `koanf:"semantic_weight"`
	LexicalWeight        float64 `koanf:"lexical_weight"`
	LocationBoost        float64 `koanf:"location_boost"`
	StrongMatchThreshold float64 `koanf:"strong_match_threshold"`

	// Lexical-only fallback ranking.
	FallbackLexicalWeight   float64 `koanf:"fallback_lexical_weight"`
	FallbackStrongThreshold float64 `koanf:"fallback_strong_threshold"`

	// EmbedConcurrency bounds in-flight embedding calls per ranking request.
	EmbedConcurrency int `koanf:"embed_concurrency"`

	// MetricsEnabled toggles the capability, inference and matching recorders.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsRefreshMS is how often the system gauges are refreshed.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// MetricsLatencyBucketsMS overrides the latency histogram buckets. Empty keeps the defaults.
	MetricsLatencyBucketsMS []float64 `koanf:"metrics_latency_buckets_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		MaxBodyBytes:            1 << 20,
		InferenceBaseURL:        "https://api-inference.huggingface.co/models",
		InferenceTimeoutMS:      35_000,
		Models:                  map[string][]string{},
		ModerationThreshold:     0.65,
		SemanticWeight:          0.65,
		LexicalWeight:           0.25,
		LocationBoost:           0.10,
		StrongMatchThreshold:    0.7,
		FallbackLexicalWeight:   0.85,
		FallbackStrongThreshold: 0.65,
		EmbedConcurrency:        8,
		MetricsEnabled:          true,
		MetricsNamespace:        "campusai",
		MetricsRefreshMS:        10_000,
	}
}

// InferenceTimeout returns the per-attempt timeout as a duration.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutMS) * time.Millisecond
}

// MetricsRefresh returns the system gauge refresh interval as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// HasInferenceToken reports whether remote inference is configured.
func (c *Config) HasInferenceToken() bool {
	return c.InferenceToken != ""
}
