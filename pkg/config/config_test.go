package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"lintang/routeplanner/pkg/config"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, _, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, config.DefaultGeocoderURL, cfg.GeocoderURL)
	assert.Equal(t, config.DefaultRouterURL, cfg.RouterURL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Duration(0), cfg.UpstreamTimeout)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://maps.example.com")
	t.Setenv("UPSTREAM_TIMEOUT", "7s")
	t.Setenv("GEOCODER_URL", "http://geocoder.test/")

	cfg, _, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://maps.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 7*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "http://geocoder.test", cfg.GeocoderURL)
}

func TestLoadFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routeplanner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 6000
log_level: debug
router_url: http://osrm.test
cors_allowed_origins:
  - http://a.test
  - http://b.test
`), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", config.DefaultPort, "listen port")
	flags.String("router-url", config.DefaultRouterURL, "routing provider")
	require.NoError(t, flags.Parse([]string{"--port=7000"}))

	cfg, v, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port, "explicit flag beats the file")
	assert.Equal(t, "http://osrm.test", cfg.RouterURL, "unset flag keeps the file value")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, path, v.ConfigFileUsed())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("port", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		_, _, err := config.Load("", nil)
		assert.Error(t, err)
	})

	t.Run("url", func(t *testing.T) {
		t.Setenv("ROUTER_URL", "not a url")
		_, _, err := config.Load("", nil)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.Error(t, err)
	})
}
