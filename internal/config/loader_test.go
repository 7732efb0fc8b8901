package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/campusai/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully in local-only mode", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.InferenceTimeoutMS, convey.ShouldEqual, 35_000)
				convey.So(cfg.HasInferenceToken(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CAMPUSAI_ADDR", ":8080")
			_ = os.Setenv("CAMPUSAI_INFERENCE_TIMEOUT_MS", "5000")
			_ = os.Setenv("CAMPUSAI_MODERATION_THRESHOLD", "0.8")
			_ = os.Setenv("CAMPUSAI_EMBED_CONCURRENCY", "3")
			_ = os.Setenv("CAMPUSAI_METRICS_ENABLED", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.InferenceTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.ModerationThreshold, convey.ShouldEqual, 0.8)
				convey.So(cfg.EmbedConcurrency, convey.ShouldEqual, 3)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the token comes from the alternate names", func() {
			_ = os.Setenv("HUGGINGFACE_API_KEY", "hf_second")

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the second name is used", func() {
				convey.So(cfg.InferenceToken, convey.ShouldEqual, "hf_second")
			})

			convey.Convey("And HF_TOKEN wins over HUGGINGFACE_API_KEY", func() {
				_ = os.Setenv("HF_TOKEN", "hf_first")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.InferenceToken, convey.ShouldEqual, "hf_first")
			})

			convey.Convey("And the prefixed key wins over both", func() {
				_ = os.Setenv("CAMPUSAI_INFERENCE_TOKEN", "explicit")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.InferenceToken, convey.ShouldEqual, "explicit")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
inference_timeout_ms: 1200
semantic_weight: 0.5
models:
  summarization:
    - org/primary
    - org/secondary
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("CAMPUSAI_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.InferenceTimeoutMS, convey.ShouldEqual, 1200)
				convey.So(cfg.SemanticWeight, convey.ShouldEqual, 0.5)
				convey.So(cfg.LexicalWeight, convey.ShouldEqual, 0.25) // default
				convey.So(cfg.Models["summarization"], convey.ShouldResemble, []string{"org/primary", "org/secondary"})
			})

			convey.Convey("And env should override file values", func() {
				_ = os.Setenv("CAMPUSAI_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.InferenceTimeoutMS, convey.ShouldEqual, 1200)
			})
		})

		convey.Convey("When a dotenv file is supplied", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "test.env")
			convey.So(os.WriteFile(path, []byte("HF_TOKEN=from_dotenv\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("CAMPUSAI_ENV_FILE", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then the token is picked up", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.InferenceToken, convey.ShouldEqual, "from_dotenv")
			})
		})

		convey.Convey("When the dotenv file does not exist", func() {
			_ = os.Setenv("CAMPUSAI_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("CAMPUSAI_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CAMPUSAI_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CAMPUSAI_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a threshold is out of range", func() {
			_ = os.Setenv("CAMPUSAI_MODERATION_THRESHOLD", "1.5")

			_, err := config.Load(ctx)

			convey.Convey("Then validation names the field", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "moderation_threshold")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CAMPUSAI_INFERENCE_TIMEOUT_MS", "soon")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"CAMPUSAI_CONFIG",
		"CAMPUSAI_ENV_FILE",
		"CAMPUSAI_ADDR",
		"CAMPUSAI_INFERENCE_TIMEOUT_MS",
		"CAMPUSAI_INFERENCE_TOKEN",
		"CAMPUSAI_MODERATION_THRESHOLD",
		"CAMPUSAI_EMBED_CONCURRENCY",
		"CAMPUSAI_METRICS_ENABLED",
		"HF_TOKEN",
		"HUGGINGFACE_API_KEY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "campusai-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
