// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port         int    `envconfig:"PORT" default:"8000"`
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"chatdrop"`
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"uploads"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`

	// Per-IP limit on message submissions. Zero requests disables the
	// limiter entirely.
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"0"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
