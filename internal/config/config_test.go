package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kitabu_test")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.BaseCurrency != "USD" {
		t.Errorf("expected default base currency USD, got %s", cfg.BaseCurrency)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected default token TTL 15m, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RateLimitEnabled {
		t.Error("expected rate limiting disabled by default")
	}
	if cfg.KafkaEnabled {
		t.Error("expected kafka disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kitabu_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.ServerPort)
	}
	if !cfg.KafkaEnabled {
		t.Error("expected kafka enabled")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Errorf("expected trimmed broker list, got %v", cfg.KafkaBrokers)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("expected 30s window, got %s", cfg.RateLimitWindow)
	}
}

func TestLoad_RequiredSettings(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := Load(); err != ErrMissingDatabaseURL {
		t.Errorf("expected ErrMissingDatabaseURL, got %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/kitabu_test")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err != ErrMissingJWTSecret {
		t.Errorf("expected ErrMissingJWTSecret, got %v", err)
	}
}
