package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_PORT", "")
	t.Setenv("REDIS_PORT", "not-a-number")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("JWT_SECRET", "")

	cfg := LoadConfig()

	assert.Equal(t, 10501, cfg.DBPort)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 3004, cfg.HTTPPort)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("RATE_LIMIT_WINDOW", "-1m")
	t.Setenv("LOG_DIR", "/tmp/task-logs")

	cfg := LoadConfig()

	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow, "non-positive durations fall back")
	assert.Equal(t, "/tmp/task-logs", cfg.LogDir)
}
