package config

import (
	"testing"
	"time"
)

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":18080")
	t.Setenv("GRPC_ADDR", ":19090")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "test-issuer")
	t.Setenv("ACCESS_TOKEN_TTL", "90m")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("DEMO_USERNAME", "tester")
	t.Setenv("MOCK_SEED", "42")
	t.Setenv("MOCK_LATENCY", "false")
	t.Setenv("DEFAULT_PAGE_SIZE", "7")
	t.Setenv("TOKEN_SWEEP_INTERVAL_SECONDS", "30")

	cfg := Load()
	if cfg.HTTPAddr != ":18080" {
		t.Fatalf("expected HTTP_ADDR override, got %s", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":19090" {
		t.Fatalf("expected GRPC_ADDR override, got %s", cfg.GRPCAddr)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Fatalf("expected JWT_SECRET override, got %s", cfg.JWTSecret)
	}
	if cfg.JWTIssuer != "test-issuer" {
		t.Fatalf("expected JWT_ISSUER override, got %s", cfg.JWTIssuer)
	}
	if cfg.AccessTokenTTL != 90*time.Minute {
		t.Fatalf("expected ACCESS_TOKEN_TTL 90m, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Fatalf("expected REDIS_ADDR override, got %s", cfg.RedisAddr)
	}
	if cfg.DemoUsername != "tester" {
		t.Fatalf("expected DEMO_USERNAME override, got %s", cfg.DemoUsername)
	}
	if cfg.MockSeed != 42 {
		t.Fatalf("expected MOCK_SEED 42, got %d", cfg.MockSeed)
	}
	if cfg.MockLatency {
		t.Fatalf("expected MOCK_LATENCY false")
	}
	if cfg.DefaultPageSize != 7 {
		t.Fatalf("expected DEFAULT_PAGE_SIZE 7, got %d", cfg.DefaultPageSize)
	}
	if cfg.TokenSweepInterval != 30*time.Second {
		t.Fatalf("expected TOKEN_SWEEP_INTERVAL 30s, got %s", cfg.TokenSweepInterval)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := Load()
	if cfg.DemoUsername != "demo" || cfg.DemoUserID != "123456" {
		t.Fatalf("unexpected demo identity %s/%s", cfg.DemoUsername, cfg.DemoUserID)
	}
	if !cfg.MockLatency {
		t.Fatalf("expected latency simulation on by default")
	}
	if cfg.DefaultPageSize != 5 {
		t.Fatalf("expected default page size 5, got %d", cfg.DefaultPageSize)
	}
}
