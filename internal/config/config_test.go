package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, def.AdminServer.Port, cfg.AdminServer.Port)
	assert.Equal(t, def.RabbitMQ.OrderQueue, cfg.RabbitMQ.OrderQueue)
	assert.Equal(t, "carmarket_sid", cfg.Session.Cookie)
	assert.False(t, cfg.Checkout.StrictItems)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9090\ncheckout:\n  strict_items: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("CARMARKET_REDIS_ADDR", "redis.internal:6380")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Checkout.StrictItems)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	// 未覆盖的字段保持默认
	assert.Equal(t, 8081, cfg.AdminServer.Port)
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 2*time.Hour, JWTConfig{}.TTL())
	assert.Equal(t, 24*time.Hour, SessionConfig{}.TTL())
	assert.Equal(t, 10*time.Second, CheckoutConfig{}.LockTTL())
	assert.Equal(t, 30*time.Second, CheckoutConfig{LockTTLSeconds: 30}.LockTTL())
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Port: 8080}.Addr())
}
