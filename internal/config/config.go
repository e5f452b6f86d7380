// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the CLI reads from the environment.
type Config struct {
	// GitHub
	GitHubToken      string `envconfig:"GITHUB_TOKEN" validate:"required"`
	GitHubAPIURL     string `envconfig:"GITHUB_API_URL" validate:"omitempty,url"`
	GitHubGraphQLURL string `envconfig:"GITHUB_GRAPHQL_URL" validate:"omitempty,url"`

	// Polling of statistics that are still being computed
	PollMaxAttempts     int           `envconfig:"REPOSTATS_POLL_MAX_ATTEMPTS" default:"10" validate:"gt=0,lte=100"`
	PollInitialInterval time.Duration `envconfig:"REPOSTATS_POLL_INITIAL_INTERVAL" default:"1s" validate:"gt=0"`
	PollMaxInterval     time.Duration `envconfig:"REPOSTATS_POLL_MAX_INTERVAL" default:"16s" validate:"gtefield=PollInitialInterval"`
	PollMaxElapsed      time.Duration `envconfig:"REPOSTATS_POLL_MAX_ELAPSED" default:"2m" validate:"gt=0"`
	PollMultiplier      float64       `envconfig:"REPOSTATS_POLL_MULTIPLIER" default:"2" validate:"gte=1"`

	// Aggregation
	Concurrency    int           `envconfig:"REPOSTATS_CONCURRENCY" default:"4" validate:"gt=0,lte=32"`
	RateLimitSleep time.Duration `envconfig:"REPOSTATS_RATE_LIMIT_SLEEP" default:"1h" validate:"gt=0"`
}

// Loader reads a Config from .env files and the process environment.
type Loader struct {
	Validate *validator.Validate
	// DotEnvFiles are loaded in order before the environment is read. Missing files are skipped.
	DotEnvFiles []string
	logger      *log.Logger
}

// NewLoader creates a Loader that reads ".env" from the working directory.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Loader{
		Validate:    validator.New(),
		DotEnvFiles: []string{".env"},
		logger:      logger,
	}
}

// Load reads and validates the configuration.
func (l *Loader) Load() (Config, error) {
	var cfg Config

	l.loadDotEnv()
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("env load: %w", err)
	}
	if err := l.Validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config validation: %w", err)
	}

	l.logger.Printf("config loaded apiURL=%q pollMaxAttempts=%d concurrency=%d token_set=%t",
		cfg.GitHubAPIURL, cfg.PollMaxAttempts, cfg.Concurrency, cfg.GitHubToken != "")
	return cfg, nil
}

// loadDotEnv does not override variables already set in the environment.
func (l *Loader) loadDotEnv() {
	for _, f := range l.DotEnvFiles {
		if strings.TrimSpace(f) == "" || !fileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			l.logger.Printf("dotenv: failed loading %s: %v", f, err)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
