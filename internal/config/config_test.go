package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("PUBLIC_BASE_URL", "http://localhost:8080/")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "contacts")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("MAIL_SERVER", "localhost")
	t.Setenv("MAIL_PORT", "2525")
	t.Setenv("MAIL_FROM", "noreply@example.com")

	// Make sure optional knobs from the host environment don't leak in.
	t.Setenv("JWT_ALGORITHM", "")
	t.Setenv("ACCESS_EXPIRE_MIN", "")
	t.Setenv("REFRESH_EXPIRE_DAYS", "")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("AVATAR_DIR", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Auth.Algorithm != "HS256" {
		t.Fatalf("default algorithm: want HS256, got %q", cfg.Auth.Algorithm)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("default access TTL: got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("default refresh TTL: got %v", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.DB.SSLMode != "disable" {
		t.Fatalf("local sslmode default: got %q", cfg.DB.SSLMode)
	}
	if cfg.App.PublicBaseURL != "http://localhost:8080" {
		t.Fatalf("base url must be trimmed, got %q", cfg.App.PublicBaseURL)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("http addr: got %q", cfg.HTTPAddr())
	}
	if cfg.RedisAddr() != "localhost:6379" {
		t.Fatalf("redis addr: got %q", cfg.RedisAddr())
	}
}

func TestLoadRequiresSecretKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SECRET_KEY", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SECRET_KEY") {
		t.Fatalf("want SECRET_KEY error, got %v", err)
	}
}

func TestLoadRejectsUnknownAlgorithm(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ALGORITHM", "RS256")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_ALGORITHM") {
		t.Fatalf("want JWT_ALGORITHM error, got %v", err)
	}
}

func TestLoadAcceptsHS512(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ALGORITHM", "HS512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.Algorithm != "HS512" {
		t.Fatalf("got %q", cfg.Auth.Algorithm)
	}
}

func TestLoadAccumulatesErrors(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("APP_ENV", "prod-like")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"SECRET_KEY", "DB_HOST", "APP_ENV"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestProductionRequiresExplicitSSLMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DB_SSLMODE") {
		t.Fatalf("want DB_SSLMODE error in production, got %v", err)
	}

	t.Setenv("DB_SSLMODE", "verify-full")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("IsProduction should be true")
	}
}
