package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the application configuration, loaded from the environment.
type Config struct {
	DatabaseURL    string
	DBMaxConns     int
	DBMaxIdleTime  time.Duration
	ServerPort     string
	ServerHost     string
	Environment    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	JWTSecret      string
	AccessTokenTTL time.Duration

	BaseCurrency string

	RedisURL         string
	RateLimitEnabled bool
	RateLimitCalls   int
	RateLimitWindow  time.Duration

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxConns:     getEnvOrDefaultInt("DB_MAX_CONNS", 25),
		DBMaxIdleTime:  getEnvOrDefaultDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
		ServerPort:     getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:     getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		Environment:    getEnvOrDefault("ENV", "development"),
		ReadTimeout:    getEnvOrDefaultDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   getEnvOrDefaultDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:    getEnvOrDefaultDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: getEnvOrDefaultDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),

		BaseCurrency: getEnvOrDefault("BASE_CURRENCY", "USD"),

		RedisURL:         getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled: getEnvOrDefaultBool("RATE_LIMIT_ENABLED", false),
		RateLimitCalls:   getEnvOrDefaultInt("RATE_LIMIT_CALLS", 60),
		RateLimitWindow:  getEnvOrDefaultDuration("RATE_LIMIT_WINDOW", time.Minute),

		KafkaEnabled: getEnvOrDefaultBool("KAFKA_ENABLED", false),
		KafkaBrokers: splitList(getEnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getEnvOrDefault("KAFKA_TOPIC", "kitabu.ledger-events"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvOrDefaultInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvOrDefaultBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
