package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains client configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	API      API     `envPrefix:"API_"`
	Auth     Auth    `envPrefix:"AUTH_"`
	Storage  Storage `envPrefix:"STORAGE_"`
}

// API contains game server connection parameters.
type API struct {
	URL        string        `env:"URL" envDefault:"http://localhost:8080/api"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"15s"`
	CACertFile string        `env:"CA_CERT_FILE"`
}

// Auth selects the authentication provider.
type Auth struct {
	Mock       bool          `env:"MOCK" envDefault:"false"`
	MockDelay  time.Duration `env:"MOCK_DELAY" envDefault:"1s"`
	MockSecret string        `env:"MOCK_SECRET" envDefault:"devsecret"`
}

// Storage contains parameters of the persisted session markers.
type Storage struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DSN" envDefault:"townforge.db"`
}

// NewConfig loads configuration from an optional .env file and environment variables.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}
	return nil
}
