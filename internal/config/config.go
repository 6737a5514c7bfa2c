package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr           string
	GRPCAddr           string
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RedisAddr          string
	RedisPassword      string
	ServiceAuthToken   string
	DemoUsername       string
	DemoPassword       string
	DemoUserID         string
	MockSeed           int64
	MockLatency        bool
	DefaultPageSize    int
	TokenSweepInterval time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:           getenv("GRPC_ADDR", ":9090"),
		JWTSecret:          getenv("JWT_SECRET", "dev-secret"),
		JWTIssuer:          getenv("JWT_ISSUER", "schoolmon"),
		AccessTokenTTL:     getenvDuration("ACCESS_TOKEN_TTL", 12*time.Hour),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		ServiceAuthToken:   getenv("SERVICE_AUTH_TOKEN", ""),
		DemoUsername:       getenv("DEMO_USERNAME", "demo"),
		DemoPassword:       getenv("DEMO_PASSWORD", "ACLZBw6QCZ"),
		DemoUserID:         getenv("DEMO_USER_ID", "123456"),
		MockSeed:           getenvInt64("MOCK_SEED", 0),
		MockLatency:        getenvBool("MOCK_LATENCY", true),
		DefaultPageSize:    getenvInt("DEFAULT_PAGE_SIZE", 5),
		TokenSweepInterval: getenvDuration("TOKEN_SWEEP_INTERVAL", time.Minute),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
