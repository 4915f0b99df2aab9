package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

// Environment variables the settings loader reads. Credentials are
// environment-sourced so manifests never carry secrets.
const (
	EnvBaseURL     = "FLOWMETA_BASE_URL"
	EnvToken       = "FLOWMETA_TOKEN"
	EnvUsername    = "FLOWMETA_USERNAME"
	EnvPassword    = "FLOWMETA_PASSWORD"
	EnvTimeout     = "FLOWMETA_TIMEOUT_SECONDS"
	EnvMaxAttempts = "FLOWMETA_RETRY_MAX_ATTEMPTS"
	EnvWorkers     = "FLOWMETA_WORKERS"
)

// Settings holds the per-run connection configuration. It is constructed
// once per invocation and passed explicitly; nothing here is process-wide
// state.
type Settings struct {
	BaseURL        string `validate:"required,url"`
	Token          string
	Username       string
	Password       string
	Timeout        time.Duration
	RetryAttempts  int `validate:"min=1,max=10"`
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	Workers        int `validate:"min=1,max=32"`
}

// LoadSettings reads settings from the environment, with .env files as a
// convenience for local runs. Missing optional values fall back to
// defaults.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load(".env") //nolint:errcheck

	settings := &Settings{
		BaseURL:        os.Getenv(EnvBaseURL),
		Token:          os.Getenv(EnvToken),
		Username:       os.Getenv(EnvUsername),
		Password:       os.Getenv(EnvPassword),
		Timeout:        120 * time.Second,
		RetryAttempts:  5,
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  8 * time.Second,
		Workers:        4,
	}

	if raw := os.Getenv(EnvTimeout); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, flowerrors.NewValidationError(EnvTimeout, fmt.Sprintf("must be a positive integer, got %q", raw), err)
		}
		settings.Timeout = time.Duration(seconds) * time.Second
	}

	if raw := os.Getenv(EnvMaxAttempts); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			return nil, flowerrors.NewValidationError(EnvMaxAttempts, fmt.Sprintf("must be an integer, got %q", raw), err)
		}
		settings.RetryAttempts = attempts
	}

	if raw := os.Getenv(EnvWorkers); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return nil, flowerrors.NewValidationError(EnvWorkers, fmt.Sprintf("must be an integer, got %q", raw), err)
		}
		settings.Workers = workers
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks structural constraints plus the credential rule: a
// bearer token or a basic-auth pair, never neither.
func (s *Settings) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		return flowerrors.NewValidationError("", err.Error(), err)
	}

	if s.Token == "" && (s.Username == "" || s.Password == "") {
		return flowerrors.NewValidationError("credentials",
			fmt.Sprintf("set %s, or both %s and %s", EnvToken, EnvUsername, EnvPassword), nil)
	}

	return nil
}

// APIRoot returns the versioned API base the transport targets.
func (s *Settings) APIRoot() string {
	base := s.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/api/v1"
}
