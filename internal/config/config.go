// Package config centralizes loading of the process configuration from
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend kinds accepted for the request store.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Limit store kinds.
const (
	LimitStoreFile   = "file"
	LimitStoreMemory = "memory"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Limiter    LimiterConfig
	LimitStore LimitStoreConfig
}

type ServerConfig struct {
	Port string
}

type StorageConfig struct {
	Kind           string
	Redis          RedisConfig
	MemoryCapacity int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LimiterConfig struct {
	NumSlots             int
	BlockedCacheCapacity int
	CountDeniedAttempts  bool
}

type LimitStoreConfig struct {
	Kind string
	Path string
}

// Load reads the environment (optionally seeded from a .env file) and
// validates the backend selections.
func Load() (Config, error) {
	_ = godotenv.Load()

	server := ServerConfig{Port: getEnv("SERVER_PORT", "8080")}

	storage, err := buildStorageConfig()
	if err != nil {
		return Config{}, err
	}

	limiter, err := buildLimiterConfig()
	if err != nil {
		return Config{}, err
	}

	limitStore, err := buildLimitStoreConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server:     server,
		Storage:    storage,
		Limiter:    limiter,
		LimitStore: limitStore,
	}, nil
}

func buildStorageConfig() (StorageConfig, error) {
	kind := getEnv("STORAGE_TYPE", StorageMemory)
	if kind != StorageMemory && kind != StorageRedis {
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_TYPE %q: must be %q or %q", kind, StorageMemory, StorageRedis)
	}

	capacity, err := strconv.Atoi(getEnv("IN_MEM_CAPACITY", "1000"))
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid IN_MEM_CAPACITY: %w", err)
	}

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return StorageConfig{}, err
	}

	return StorageConfig{
		Kind:           kind,
		Redis:          redisConfig,
		MemoryCapacity: capacity,
	}, nil
}

func buildRedisConfig() (RedisConfig, error) {
	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func buildLimiterConfig() (LimiterConfig, error) {
	numSlots, err := strconv.Atoi(getEnv("NUM_SLOTS", "10"))
	if err != nil {
		return LimiterConfig{}, fmt.Errorf("invalid NUM_SLOTS: %w", err)
	}
	blockedCapacity, err := strconv.Atoi(getEnv("BLOCKED_CACHE_CAPACITY", "10000"))
	if err != nil {
		return LimiterConfig{}, fmt.Errorf("invalid BLOCKED_CACHE_CAPACITY: %w", err)
	}
	countDenied, err := strconv.ParseBool(getEnv("COUNT_DENIED_ATTEMPTS", "true"))
	if err != nil {
		return LimiterConfig{}, fmt.Errorf("invalid COUNT_DENIED_ATTEMPTS: %w", err)
	}

	return LimiterConfig{
		NumSlots:             numSlots,
		BlockedCacheCapacity: blockedCapacity,
		CountDeniedAttempts:  countDenied,
	}, nil
}

func buildLimitStoreConfig() (LimitStoreConfig, error) {
	kind := getEnv("CONFIG_STORE_TYPE", LimitStoreFile)
	if kind != LimitStoreFile && kind != LimitStoreMemory {
		return LimitStoreConfig{}, fmt.Errorf("invalid CONFIG_STORE_TYPE %q: must be %q or %q", kind, LimitStoreFile, LimitStoreMemory)
	}

	return LimitStoreConfig{
		Kind: kind,
		Path: getEnv("CONFIG_PATH", "config.json"),
	}, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
