package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = []byte(`
weatherapi:
  baseURL: https://api.weatherapi.com/v1
  days: 7
  timeout: 10s
geolocation:
  provider: ip
  enabled: true
  baseURL: http://ip-api.com
  timeout: 5s
storage:
  driver: file
search:
  debounce: 1200ms
  minLength: 3
log:
  level: info
`)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(defaults, "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.WeatherAPI.BaseURL)
	assert.Equal(t, 7, cfg.WeatherAPI.Days)
	assert.Equal(t, 10*time.Second, cfg.WeatherAPI.Timeout)
	assert.Equal(t, 1200*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 3, cfg.Search.MinLength)
	assert.True(t, cfg.Geolocation.Enabled)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "state.yaml", filepath.Base(cfg.Storage.Path))
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
geolocation:
  provider: fixed
  latitude: 51.5
  longitude: -0.12
storage:
  driver: sqlite
  path: /tmp/weather.db
log:
  level: debug
`), 0o644))

	cfg, err := Load(defaults, path)
	require.NoError(t, err)

	assert.Equal(t, "fixed", cfg.Geolocation.Provider)
	assert.Equal(t, 51.5, cfg.Geolocation.Latitude)
	assert.True(t, cfg.Geolocation.Enabled)
	assert.Equal(t, "/tmp/weather.db", cfg.Storage.Path)
	assert.Equal(t, 7, cfg.WeatherAPI.Days)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WEATHER_WEATHERAPI_API_KEY", "from-env")
	t.Setenv("WEATHER_WEATHERAPI_DAYS", "3")
	t.Setenv("WEATHER_GEOLOCATION_ENABLED", "false")
	t.Setenv("WEATHER_SEARCH_DEBOUNCE", "250ms")

	cfg, err := Load(defaults, "")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.WeatherAPI.APIKey)
	assert.Equal(t, 3, cfg.WeatherAPI.Days)
	assert.False(t, cfg.Geolocation.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.WeatherAPI.BaseURL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "days", env: map[string]string{"WEATHER_WEATHERAPI_DAYS": "0"}},
		{name: "driver", env: map[string]string{"WEATHER_STORAGE_DRIVER": "etcd"}},
		{name: "redis without addr", env: map[string]string{"WEATHER_STORAGE_DRIVER": "redis"}},
		{name: "provider", env: map[string]string{"WEATHER_GEOLOCATION_PROVIDER": "gps"}},
		{name: "latitude", env: map[string]string{"WEATHER_GEOLOCATION_LATITUDE": "123"}},
		{name: "level", env: map[string]string{"WEATHER_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(defaults, "")
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(defaults, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadBadEnvironmentValue(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WEATHER_WEATHERAPI_DAYS", "seven")

	_, err := Load(defaults, "")
	assert.ErrorContains(t, err, "read environment")
}
