package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"clauseguard-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Model provider selection: openai, gemini, or openrouter.
	LLMProvider       string `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMModel          string `envconfig:"LLM_MODEL"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	OpenRouterAPIKey  string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `envconfig:"OPENROUTER_BASE_URL"`
	LLMRatePerMinute  int    `envconfig:"LLM_REQUESTS_PER_MINUTE" default:"0"`

	ChunkWindowSize     int `envconfig:"CHUNK_WINDOW_SIZE" default:"12000"`
	ChunkOverlap        int `envconfig:"CHUNK_OVERLAP" default:"400"`
	AnalysisMaxAttempts int `envconfig:"ANALYSIS_MAX_ATTEMPTS" default:"3"`

	WorkerConcurrency  int           `envconfig:"WORKER_CONCURRENCY" default:"3"`
	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"5s"`

	InternalAPISecret string `envconfig:"INTERNAL_API_SECRET"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CLAUSEGUARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// ProviderAPIKey returns the API key matching the configured provider.
func (c *Config) ProviderAPIKey() string {
	switch c.LLMProvider {
	case "gemini":
		return c.GeminiAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

func (c *Config) HasProvider() bool {
	return c.ProviderAPIKey() != ""
}
