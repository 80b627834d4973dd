// Package config centraliza o carregamento de configurações da aplicação.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/core/domain"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Persist  PersistConfig
	Limiter  LimiterConfig
	LogLevel zerolog.Level
}

type ServerConfig struct {
	Port string
}

type StorageConfig struct {
	Type  string
	Redis RedisConfig
}

type PersistConfig struct {
	Type string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LimiterConfig struct {
	Rule domain.Rule
}

func Load() (Config, error) {
	_ = godotenv.Load()

	server := ServerConfig{Port: getEnv("SERVER_PORT", "8080")}

	storageType := strings.ToLower(getEnv("STORAGE_TYPE", "memory"))
	persistType := strings.ToLower(getEnv("PERSIST_TYPE", "log"))

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return Config{}, err
	}

	limiterConfig, err := buildLimiterConfig()
	if err != nil {
		return Config{}, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "info")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return Config{
		Server: server,
		Storage: StorageConfig{
			Type:  storageType,
			Redis: redisConfig,
		},
		Persist:  PersistConfig{Type: persistType},
		Limiter:  limiterConfig,
		LogLevel: level,
	}, nil
}

func buildRedisConfig() (RedisConfig, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func buildLimiterConfig() (LimiterConfig, error) {
	threshold, err := strconv.Atoi(getEnv("COMMENT_THRESHOLD", "3"))
	if err != nil {
		return LimiterConfig{}, fmt.Errorf("invalid COMMENT_THRESHOLD: %w", err)
	}

	rule := domain.Rule{Threshold: threshold}
	if err := rule.Validate(); err != nil {
		return LimiterConfig{}, fmt.Errorf("invalid COMMENT_THRESHOLD: %w", err)
	}

	return LimiterConfig{Rule: rule}, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
