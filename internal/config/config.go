// Package config reads process configuration from the environment. Callers
// load a .env file first (see cmd/api).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPPort     string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"memory"`
	JWTSecret    string        `env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	SeedDemoData bool          `env:"SEED_DEMO_DATA" envDefault:"false"`

	Insights Insights
	OTel     OTel
}

type Insights struct {
	APIKey      string  `env:"GROQ_API_KEY"`
	BaseURL     string  `env:"INSIGHTS_BASE_URL" envDefault:"https://api.groq.com/openai/v1/"`
	Model       string  `env:"INSIGHTS_MODEL" envDefault:"llama-3.3-70b-versatile"`
	Temperature float64 `env:"INSIGHTS_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int64   `env:"INSIGHTS_MAX_TOKENS" envDefault:"800"`
}

type OTel struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER must be %s or %s, got %q", DriverMemory, DriverPostgres, c.StoreDriver))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.JWTExpiresIn <= 0 {
		problems = append(problems, "JWT_EXPIRES_IN must be positive")
	}
	if c.Insights.MaxTokens <= 0 {
		problems = append(problems, "INSIGHTS_MAX_TOKENS must be positive")
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}
