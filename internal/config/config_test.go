package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every config key for the duration of the test so values
// leaking in from the host environment cannot skew assertions. t.Setenv
// registers the restore; the explicit Unsetenv makes the key truly absent.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "DATABASE_URL", "DATABASE_NAME", "UPLOAD_DIR", "LOG_LEVEL",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "SHUTDOWN_TIMEOUT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
	assert.Equal(t, "chatdrop", cfg.DatabaseName)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "mongodb://db.internal:27017")
	t.Setenv("DATABASE_NAME", "messages-prod")
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_DIR", "/var/lib/chatdrop/uploads")
	t.Setenv("RATE_LIMIT_REQUESTS", "20")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "messages-prod", cfg.DatabaseName)
	assert.Equal(t, "/var/lib/chatdrop/uploads", cfg.UploadDir)
	assert.Equal(t, 20, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
