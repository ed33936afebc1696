package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/zeek-r/go-reqlogger/internal/logger"
	"gopkg.in/yaml.v3"
)

// DefaultPort is used when neither the config file nor the command line sets one
const DefaultPort = 8080

// Config holds the main application configuration
type Config struct {
	Address         string        `yaml:"address"`                   // Bind host, empty means all interfaces
	Port            int           `yaml:"port"`                      // TCP port, 0 picks an ephemeral port
	Concurrent      bool          `yaml:"concurrent,omitempty"`      // Handle requests in parallel instead of one at a time
	ShutdownTimeout int           `yaml:"shutdownTimeout,omitempty"` // Seconds to wait for in-flight requests on stop
	Logging         logger.Config `yaml:"logging,omitempty"`         // Logging configuration
	Metrics         MetricsConfig `yaml:"metrics,omitempty"`         // Metrics configuration
}

// MetricsConfig defines how metrics are collected and exposed
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`  // Whether metrics collection is enabled
	Address  string `yaml:"address"`  // Listener for the metrics endpoints, separate from the main port
	Endpoint string `yaml:"endpoint"` // Prometheus path (e.g., /metrics)
	Stats    string `yaml:"stats"`    // JSON stats path (e.g., /stats)
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		ShutdownTimeout: 5,
		Logging:         logger.DefaultConfig(),
	}
}

// Load reads the configuration from the specified file on top of the defaults
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 5
	}

	if config.Metrics.Enabled {
		if config.Metrics.Address == "" {
			config.Metrics.Address = ":9090"
		}
		if config.Metrics.Endpoint == "" {
			config.Metrics.Endpoint = "/metrics"
		}
		if config.Metrics.Stats == "" {
			config.Metrics.Stats = "/stats"
		}
	}

	return config, config.Validate()
}

// ParsePort parses the positional port argument
func ParsePort(arg string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", arg, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %d: must be between 0 and 65535", port)
	}
	return port, nil
}

// ListenAddress returns the host:port the request logger binds to
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 0 and 65535", c.Port)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdownTimeout %d: must not be negative", c.ShutdownTimeout)
	}
	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return fmt.Errorf("metrics enabled but no metrics address set")
		}
		if c.Metrics.Address == c.ListenAddress() {
			return fmt.Errorf("metrics address %s must differ from the request logger address", c.Metrics.Address)
		}
		if c.Metrics.Endpoint == c.Metrics.Stats {
			return fmt.Errorf("metrics endpoint and stats path must differ")
		}
	}
	return nil
}
