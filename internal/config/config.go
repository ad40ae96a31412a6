// Package config holds the runtime configuration of the chat server and the
// constants shared by the presence and feed logic.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	// Room
	BroadcastTarget = "Todos"
	TimeLayout      = "15:04:05"

	// Presence
	DefaultParticipantTimeout = 10 * time.Second
	DefaultSweepInterval      = 15 * time.Second

	// Storage
	DriverPostgres     = "postgres"
	DriverSQLite       = "sqlite"
	defaultPostgresDSN = "host=localhost user=user password=password dbname=batepapodb port=5432 sslmode=disable"
	defaultSQLitePath  = "./data/batepapo.db"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string `env:"PORT,default=5000"`
	Env         string `env:"ENV,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	DBDriver    string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	StatusLang  string `env:"STATUS_LANG,default=pt"`

	ParticipantTimeout time.Duration `env:"PARTICIPANT_TIMEOUT,default=10s"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL,default=15s"`
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return FromEnvSet(es)
}

// FromEnvSet builds a Config from an explicit set of variables.
func FromEnvSet(es env.EnvSet) (*Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if cfg.DatabaseURL == "" {
		switch cfg.DBDriver {
		case DriverSQLite:
			cfg.DatabaseURL = defaultSQLitePath
		default:
			cfg.DatabaseURL = defaultPostgresDSN
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		return fmt.Errorf("config error: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ParticipantTimeout <= 0 {
		return fmt.Errorf("config error: PARTICIPANT_TIMEOUT must be positive, got %s", c.ParticipantTimeout)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config error: SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.Env == "production" && c.DBDriver != DriverPostgres {
		return fmt.Errorf("config error: DB_DRIVER %q is not allowed in production", c.DBDriver)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
