package config

import (
	"errors"
	"os"
	"regexp"

	"github.com/pelletier/go-toml"
)

// DefaultListenAddress is where the dashboard API binds when no
// config overrides it
const DefaultListenAddress = "0.0.0.0:8080"

var ErrInvalidListenAddress = errors.New("invalid listen address")

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Config holds the top-level settings of the dashboard API server
type Config struct {
	// Cross-origin policy for the dashboard frontend, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The <IP>:<PORT> address the API binds to
	ListenAddress string `toml:"listen_address"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
	}
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	return nil
}

// Read loads the configuration from the given TOML file.
// Settings the file omits keep their defaults
func Read(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
