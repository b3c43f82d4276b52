package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ASSET_PROXY_KEY", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 1.5, cfg.Shop.CharmPrice)
	assert.Equal(t, int64(52428800), cfg.Shop.ModelProxyMaxBytes)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 0, cfg.Redis.RedisDB)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.False(t, cfg.Mailjet.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CHARM_PRICE", "2.25")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://shop.example , ,https://admin.example")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("DB_MAX_OPEN_CONNS", "nope")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_POOL_SIZE", "32")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2.25, cfg.Shop.CharmPrice)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 3, cfg.Redis.RedisDB)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Run("jwt secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.EqualError(t, err, "missing jwt secret")
	})

	t.Run("database password", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DB_PASSWORD", "")

		_, err := Load()
		assert.EqualError(t, err, "missing database password")
	})

	t.Run("asset proxy key length", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ASSET_PROXY_KEY", "short")

		_, err := Load()
		assert.EqualError(t, err, "asset proxy key must be 16, 24 or 32 bytes")
	})

	t.Run("redis dial timeout", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REDIS_DIAL_TIMEOUT", "soon")

		_, err := Load()
		assert.EqualError(t, err, "invalid redis dial timeout")
	})

	t.Run("negative charm price", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CHARM_PRICE", "-1")

		_, err := Load()
		assert.EqualError(t, err, "invalid charm price")
	})
}
