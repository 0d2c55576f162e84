package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateConfig(t *testing.T) {
	t.Parallel()

	t.Run("invalid listen address", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.ListenAddress = "rando-address" // doesn't follow the format

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidListenAddress)
	})

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, ValidateConfig(DefaultConfig()))
	})
}

func TestConfig_Read(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Read("definitely-missing.toml")
		assert.Error(t, err)
	})

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")

		data := `
listen_address = "127.0.0.1:9090"

[cors_config]
allowed_origins = ["https://example.com"]
allowed_methods = ["GET"]
allowed_headers = ["Content-Type"]
`

		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cfg, err := Read(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddress)

		require.NotNil(t, cfg.CORSConfig)
		assert.Equal(t, []string{"https://example.com"}, cfg.CORSConfig.AllowedOrigins)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")

		data := `listen_address = "127.0.0.1:9090"`

		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cfg, err := Read(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddress)

		// The omitted CORS section falls back to the default policy
		require.NotNil(t, cfg.CORSConfig)
		assert.Equal(t, DefaultCORSConfig().AllowedOrigins, cfg.CORSConfig.AllowedOrigins)
	})
}
