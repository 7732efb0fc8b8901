package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "CAMPUSAI_"
	envConfigPath = "CAMPUSAI_CONFIG"
	envDotEnvPath = "CAMPUSAI_ENV_FILE"
	defaultDotEnv = ".env"
)

// TokenEnvNames are consulted, in order, when inference_token is not set
// through the config file or the CAMPUSAI_ prefix.
var TokenEnvNames = []string{"HF_TOKEN", "HUGGINGFACE_API_KEY"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CAMPUSAI_CONFIG is set
//  3. .env file (CAMPUSAI_ENV_FILE, or ./.env when present); never overrides the real environment
//  4. env (prefix CAMPUSAI_)
//
// The inference token additionally falls back to TokenEnvNames.
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	// CAMPUSAI_INFERENCE_TIMEOUT_MS -> inference_timeout_ms (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if cfg.InferenceToken == "" {
		cfg.InferenceToken = tokenFromEnv()
	}
	cfg.InferenceToken = strings.TrimSpace(cfg.InferenceToken)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if path := os.Getenv(envDotEnvPath); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w: dotenv %s: %v", ErrLoadConfig, path, err)
		}
		return nil
	}
	if _, err := os.Stat(defaultDotEnv); err == nil {
		_ = godotenv.Load(defaultDotEnv)
	}
	return nil
}

func tokenFromEnv() string {
	for _, name := range TokenEnvNames {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks ranges of the loaded values.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if strings.TrimSpace(c.InferenceBaseURL) == "" {
		errs = append(errs, errors.New("inference_base_url must not be empty"))
	}
	if c.InferenceTimeoutMS <= 0 {
		errs = append(errs, errors.New("inference_timeout_ms must be positive"))
	}
	if c.EmbedConcurrency <= 0 {
		errs = append(errs, errors.New("embed_concurrency must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	if c.MetricsRefreshMS <= 0 {
		errs = append(errs, errors.New("metrics_refresh_ms must be positive"))
	}
	for i, b := range c.MetricsLatencyBucketsMS {
		if i > 0 && b <= c.MetricsLatencyBucketsMS[i-1] {
			errs = append(errs, errors.New("metrics_latency_buckets_ms must be strictly increasing"))
			break
		}
	}
	for name, v := range map[string]float64{
		"moderation_threshold":      c.ModerationThreshold,
		"strong_match_threshold":    c.StrongMatchThreshold,
		"fallback_strong_threshold": c.FallbackStrongThreshold,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1]", name))
		}
	}
	for name, v := range map[string]float64{
		"semantic_weight":         c.SemanticWeight,
		"lexical_weight":          c.LexicalWeight,
		"location_boost":          c.LocationBoost,
		"fallback_lexical_weight": c.FallbackLexicalWeight,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
