package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Kind)
	assert.Equal(t, 1000, cfg.Storage.MemoryCapacity)
	assert.Equal(t, 10, cfg.Limiter.NumSlots)
	assert.Equal(t, 10000, cfg.Limiter.BlockedCacheCapacity)
	assert.True(t, cfg.Limiter.CountDeniedAttempts)
	assert.Equal(t, LimitStoreFile, cfg.LimitStore.Kind)
	assert.Equal(t, "config.json", cfg.LimitStore.Path)
}

func TestLoad_RedisBackend(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Kind)
	assert.Equal(t, "redis.internal", cfg.Storage.Redis.Host)
	assert.Equal(t, 6380, cfg.Storage.Redis.Port)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
}

func TestLoad_RejectsUnknownStorageType(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "cassandra")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownLimitStoreType(t *testing.T) {
	t.Setenv("CONFIG_STORE_TYPE", "etcd")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedNumbers(t *testing.T) {
	t.Setenv("NUM_SLOTS", "ten")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_CountingPolicyToggle(t *testing.T) {
	t.Setenv("COUNT_DENIED_ATTEMPTS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Limiter.CountDeniedAttempts)
}
