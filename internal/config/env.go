// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is shared by every binary; each reads the fields it needs.
type Config struct {
	SSHHost        string        `env:"SSH_HOST" envDefault:"::"`
	SSHPort        string        `env:"SSH_PORT" envDefault:"2222"`
	SSHHostKey     string        `env:"SSH_HOST_KEY" envDefault:"/app/keys/host_key"`
	SSHDisplayHost string        `env:"SSH_DISPLAY_HOST" envDefault:"your-server.com"`
	WebHost        string        `env:"WEB_HOST" envDefault:"0.0.0.0"`
	WebPort        string        `env:"WEB_PORT" envDefault:"8080"`
	ScoreDB        string        `env:"SCORE_DB"` // SQLite path; empty keeps scores in memory
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	OTelEndpoint   string        `env:"OTEL_ENDPOINT"`
	OTelEnabled    bool          `env:"OTEL_ENABLED" envDefault:"true"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE" envDefault:"15s"`
	LogFile        string        `env:"LOG_FILE"` // Local game only; empty discards logs
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
