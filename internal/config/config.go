// Package config holds the environment-variable inputs the composition
// root needs to construct the pipeline and its scheduler, loaded via
// envconfig and validated before anything else runs.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
)

// Config collects every environment variable the daemon consumes. Each
// field names its variable explicitly rather than relying on envconfig's
// derived names.
type Config struct {
	AuthURL          string `envconfig:"AUTH_URL" required:"true"`
	AuthClientID     string `envconfig:"AUTH_CLIENT_ID" required:"true"`
	AuthClientSecret string `envconfig:"AUTH_CLIENT_SECRET" required:"true"`
	AuthUsername     string `envconfig:"AUTH_USERNAME" required:"true"`
	AuthPassword     string `envconfig:"AUTH_PASSWORD" required:"true"`

	LoginURL                  string `envconfig:"LOGIN_URL" required:"true"`
	LoginBorderPostID         int    `envconfig:"LOGIN_BORDER_POST_ID" required:"true"`
	LoginBoxID                int    `envconfig:"LOGIN_BOX_ID" required:"true"`
	LoginPassengerControlType int    `envconfig:"LOGIN_PASSENGER_CONTROL_TYPE" required:"true"`

	DownloadURL string `envconfig:"DOWNLOAD_URL" required:"true"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`

	SchedulerIntervalHours int    `envconfig:"SCHEDULER_INTERVAL_HOURS" default:"6"`
	HTTPTimeoutSeconds     int    `envconfig:"HTTP_TIMEOUT_SECONDS" default:"60"`
	RunOnStartup           bool   `envconfig:"RUN_ON_STARTUP" default:"true"`
	LogLevel               string `envconfig:"LOG_LEVEL" default:"INFO"`
	HealthPort             int    `envconfig:"HEALTH_PORT" default:"8080"`
}

// SchedulerInterval is the configured interval as a time.Duration.
func (c Config) SchedulerInterval() time.Duration {
	return time.Duration(c.SchedulerIntervalHours) * time.Hour
}

// HTTPTimeout is the configured per-request HTTP timeout as a time.Duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load parses the process environment into a Config and validates it.
// A missing required variable or a malformed value is returned as the
// envconfig error, before validation runs. Failed validation rules are
// returned as a single aggregated error built with go-multierror, since
// several independent fields can be invalid at once and a caller should
// see all of them, not just the first.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading configuration from environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var result *multierror.Error
	if c.SchedulerIntervalHours <= 0 {
		result = multierror.Append(result, fmt.Errorf("SCHEDULER_INTERVAL_HOURS must be positive, got %d", c.SchedulerIntervalHours))
	}
	if c.HTTPTimeoutSeconds <= 0 {
		result = multierror.Append(result, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeoutSeconds))
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		result = multierror.Append(result, fmt.Errorf("HEALTH_PORT must be a valid TCP port, got %d", c.HealthPort))
	}
	if _, err := levelOrError(c.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// levelOrError resolves s to an hclog level, rejecting hclog's own silent
// fallback to NoLevel for an unrecognized string.
func levelOrError(s string) (hclog.Level, error) {
	level := hclog.LevelFromString(s)
	if level == hclog.NoLevel {
		return level, fmt.Errorf("LOG_LEVEL %q is not a recognized level", s)
	}
	return level, nil
}

// Level resolves the configured LOG_LEVEL. Called only after validate has
// already confirmed it parses.
func (c Config) Level() hclog.Level {
	level, _ := levelOrError(c.LogLevel)
	return level
}

// Masked returns a copy of c with every credential-bearing field replaced
// by a fixed-width redaction marker, safe to pass to a structured logger.
func (c Config) Masked() Config {
	const redacted = "****"
	c.AuthClientSecret = redacted
	c.AuthPassword = redacted
	c.DatabaseDSN = redacted
	return c
}
