package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "club")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "pokerclub")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("CLUB_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 30, cfg.RefreshTTLDays)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, time.UTC, cfg.ClubLocation)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("BCRYPT_COST", "twelve")
	t.Setenv("ADMIN_EMAIL", "boss@club.hu")

	_, err := Load()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET")
	assert.Contains(t, msg, "DB_NAME")
	assert.Contains(t, msg, "BCRYPT_COST")
	assert.Contains(t, msg, "ADMIN_PASSWORD")
}

func TestLoad_ListsAndBroker(t *testing.T) {
	setRequired(t)
	t.Setenv("CLUB_TIMEZONE", "UTC")
	t.Setenv("CORS_ORIGINS", "https://club.hu, http://localhost:3000 ,")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("PUBLIC_BASE_URL", "https://club.hu/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://club.hu", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQURL)
	assert.Equal(t, "https://club.hu", cfg.PublicBaseURL)
}

func TestLoadRateLimitConfig_Normalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 10*time.Second, rl.TTL)

	login := rl.LoginRateLimit()
	assert.Equal(t, "ip_route", login.KeyStrategy)
	assert.Equal(t, rl.Prefix+":login", login.Prefix)
	assert.Equal(t, 30*time.Second, login.RefillInterval)
}

func TestLoadCacheConfig_Methods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cc := LoadCacheConfig()
	assert.True(t, cc.Methods["GET"])
	assert.True(t, cc.Methods["HEAD"])
	assert.False(t, cc.Methods["POST"])
}

func TestLoadRedisConfig_HostPortWins(t *testing.T) {
	t.Setenv("REDIS_ADDR", "ignored:1")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TLS", "1")
	rc := LoadRedisConfig()
	assert.Equal(t, "cache:6380", rc.Addr)
	assert.True(t, rc.TLS)
}
