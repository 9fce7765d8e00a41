package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Listener networks
const (
	NetworkTCP   = "tcp"
	NetworkVsock = "vsock"
)

// Config controls the clearing server. Every field is read from the environment.
type Config struct {
	Network       string        `env:"DRAFTAUCTION_NETWORK"        envDefault:"tcp"`
	Addr          string        `env:"DRAFTAUCTION_ADDR"           envDefault:":5000"`
	VsockPort     uint32        `env:"DRAFTAUCTION_VSOCK_PORT"     envDefault:"5000"`
	MaxWorkers    int           `env:"DRAFTAUCTION_MAX_WORKERS,required"`
	ReadTimeout   time.Duration `env:"DRAFTAUCTION_READ_TIMEOUT"   envDefault:"30s"`
	MaxIterations int           `env:"DRAFTAUCTION_MAX_ITERATIONS" envDefault:"100000"`
	// MaxRequestBytes caps the payload read from one connection
	MaxRequestBytes int64  `env:"DRAFTAUCTION_MAX_REQUEST_BYTES" envDefault:"1048576"`
	ArchivePath     string `env:"DRAFTAUCTION_ARCHIVE_PATH"`
	LogLevel        string `env:"DRAFTAUCTION_LOG_LEVEL"      envDefault:"info"`
}

// LoadConfig parses Config from the environment and checks its values.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Network {
	case NetworkTCP, NetworkVsock:
	default:
		return fmt.Errorf("invalid network %q (must be %s or %s)", c.Network, NetworkTCP, NetworkVsock)
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive, got %d", c.MaxWorkers)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", c.ReadTimeout)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("max request bytes must be positive, got %d", c.MaxRequestBytes)
	}
	return nil
}
