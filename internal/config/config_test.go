package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_HOST", "PORT", "APP_DEBUG", "LOG_FORMAT", "RADAR_ENABLED", "DB_HOST", "MINIO_ENDPOINT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.True(t, cfg.Debug)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Radar.Enabled)
	assert.Equal(t, "http://192.168.4.1", cfg.Radar.BaseURL)
	assert.Equal(t, time.Second, cfg.Radar.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Radar.RetryInterval)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.MinIO.Enabled())
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("APP_DEBUG", "false")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("RADAR_POLL_INTERVAL", "250ms")
	t.Setenv("PORT", "8081")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.True(t, cfg.MinIO.Enabled())
	assert.False(t, cfg.Debug)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Radar.PollInterval)
	assert.Equal(t, "0.0.0.0:8081", cfg.Addr())
}

func TestAddrIPv6(t *testing.T) {
	cfg := &AppConfig{Host: "::1", Port: "5000"}
	assert.Equal(t, "[::1]:5000", cfg.Addr())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	os.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Second))

	os.Setenv(key, "-5s")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))

	os.Unsetenv(key)
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}
