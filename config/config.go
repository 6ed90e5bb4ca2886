package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort     int
	AllowedOrigins []string

	// DatabaseURL пустой, если реестр каналов отключён.
	DatabaseURL string

	StandingsBaseURL string
	GraphQLURL       string
	UpstreamTimeout  time.Duration

	UserCacheCapacity    int
	ChannelCacheCapacity int

	AdminPasswordHash string
	JWTSecretKey      string

	// Поля R2 опциональны: без них архивация отчётов отключена.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

const (
	defaultStandingsBaseURL = "https://lccn.lbao.site"
	defaultGraphQLURL       = "https://leetcode.com/graphql"
)

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if passwordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	userCapacity, err := intEnv("USER_CACHE_CAPACITY", 4096)
	if err != nil {
		return nil, err
	}
	channelCapacity, err := intEnv("CHANNEL_CACHE_CAPACITY", 256)
	if err != nil {
		return nil, err
	}
	if userCapacity <= 0 || channelCapacity <= 0 {
		return nil, fmt.Errorf("cache capacities must be positive, got user=%d channel=%d", userCapacity, channelCapacity)
	}

	timeoutSeconds, err := intEnv("UPSTREAM_TIMEOUT_SECONDS", 20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:     port,
		AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "*"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		StandingsBaseURL: stringEnv("STANDINGS_BASE_URL", defaultStandingsBaseURL),
		GraphQLURL:       stringEnv("GRAPHQL_URL", defaultGraphQLURL),
		UpstreamTimeout:  time.Duration(timeoutSeconds) * time.Second,

		UserCacheCapacity:    userCapacity,
		ChannelCacheCapacity: channelCapacity,

		AdminPasswordHash: passwordHash,
		JWTSecretKey:      jwtKey,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// ArchiveEnabled сообщает, заданы ли все поля объектного хранилища.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func stringEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func splitEnv(key, fallback string) []string {
	raw := stringEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
