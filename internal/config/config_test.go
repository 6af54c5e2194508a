package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"HOST", "PORT", "JWT_SECRET", "TOKEN_TTL", "REMEMBER_TOKEN_TTL", "OWNER_EMAIL", "OWNER_PASSWORD",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "AUTOFILL_RATE_LIMIT", "AUTOFILL_BURST",
	"NORMALIZER_ALIASES_PATH", "SEED_ON_EMPTY", "KEEPALIVE_INTERVAL",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Offline())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Security.RememberTokenTTL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Autofill.Model)
	assert.False(t, cfg.Autofill.Enabled())
	assert.True(t, cfg.Seed.OnEmpty)
	assert.Zero(t, cfg.Keepalive.Interval)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoadBuildsDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("DB_USER", "concerts")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "concertlog")
	t.Setenv("DB_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://concerts:pw@db:5432/concertlog?sslmode=disable", cfg.Database.URL)
	assert.False(t, cfg.Offline())
}

func TestLoadCollectsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("LOG_LEVEL", "chatty")
	t.Setenv("OWNER_EMAIL", "me@example.com")
	t.Setenv("AUTOFILL_BURST", "0")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{
		"JWT_SECRET must be at least 16 characters",
		"LOG_LEVEL must be one of",
		"OWNER_EMAIL and OWNER_PASSWORD must be set together",
		"AUTOFILL_BURST must be at least 1",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("PORT", "eighty")
	t.Setenv("TOKEN_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
	assert.Contains(t, err.Error(), "invalid TOKEN_TTL")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file-0123456789\nPORT=9090\n"), 0o600))

	// godotenv only fills unset variables.
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	require.NoError(t, os.Unsetenv("PORT"))

	require.NoError(t, LoadEnvFile(path))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
