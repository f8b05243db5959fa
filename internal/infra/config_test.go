package infra

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.HTTP.Logging.Enabled)
	assert.Equal(t, "INFO", cfg.HTTP.Logging.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 100, cfg.Shipper.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Shipper.FlushInterval)
	assert.Empty(t, cfg.Shipper.Backend)
}

func TestLoadConfigFrom_LoggingValues(t *testing.T) {
	v := viper.New()
	v.Set("http.logging.enabled", "false")
	v.Set("http.logging.level", "debug")

	cfg, err := LoadConfigFrom(v)
	require.NoError(t, err)

	assert.False(t, cfg.HTTP.Logging.Enabled)
	assert.Equal(t, "debug", cfg.HTTP.Logging.Level)
}

func TestLoadConfigFrom_MalformedLoggingFallsBack(t *testing.T) {
	v := viper.New()
	v.Set("http.logging.enabled", "sometimes")
	v.Set("http.logging.level", "   ")

	cfg, err := LoadConfigFrom(v)
	require.NoError(t, err)

	assert.True(t, cfg.HTTP.Logging.Enabled)
	assert.Equal(t, "INFO", cfg.HTTP.Logging.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_LOGGING_ENABLED", "false")
	t.Setenv("HTTP_LOGGING_LEVEL", "warn")
	t.Setenv("SHIPPER_BACKEND", "redis")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.HTTP.Logging.Enabled)
	assert.Equal(t, "warn", cfg.HTTP.Logging.Level)
	assert.Equal(t, "redis", cfg.Shipper.Backend)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(LoggerConfig{Level: "nonsense"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LoggerConfig{Format: "xml"})
	assert.Error(t, err)
}
