// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits. A .env file in the working directory is read
// first when present; real environment variables win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Event buses.
const (
	BusRedis = "redis"
	BusNATS  = "nats"
	BusNone  = "none"
)

// Config holds all runtime configuration for the tracker service.
type Config struct {
	Port     string
	GRPCPort string

	StoreDriver     string
	DatabaseURL     string
	DatabaseMaxConn int32
	SQLitePath      string

	EventBus string
	RedisURL string
	NATSURL  string

	AIBaseURL  string
	AITimeout  time.Duration
	AICacheTTL time.Duration

	// JobRedFlags are terms that hide a live listing, e.g. "registration fee".
	JobRedFlags []string

	JWTSecret string

	FollowUpScanInterval time.Duration

	LogLevel         string
	LogFormat        string
	OTELCollectorURL string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("TRACKER_PORT", "8082"),
		GRPCPort:         getEnv("TRACKER_GRPC_PORT", "9092"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "tracker.db"),
		RedisURL:         os.Getenv("REDIS_URL"),
		NATSURL:          os.Getenv("NATS_URL"),
		AIBaseURL:        getEnv("AI_API_BASE_URL", "https://ai-internship.onrender.com/api"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		OTELCollectorURL: os.Getenv("OTEL_COLLECTOR_URL"),
	}

	// Store: Postgres when a URL is given, otherwise a local SQLite file.
	cfg.StoreDriver = os.Getenv("STORE_DRIVER")
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverSQLite
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = DriverPostgres
		}
	}
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.StoreDriver)
	}

	if s := os.Getenv("DATABASE_MAX_CONNS"); s != "" {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("DATABASE_MAX_CONNS must be a positive integer, got %q", s)
		}
		cfg.DatabaseMaxConn = int32(v)
	}

	// Event bus: Redis when a URL is given, otherwise disabled.
	cfg.EventBus = os.Getenv("EVENT_BUS")
	if cfg.EventBus == "" {
		cfg.EventBus = BusNone
		if cfg.RedisURL != "" {
			cfg.EventBus = BusRedis
		}
	}
	switch cfg.EventBus {
	case BusRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when EVENT_BUS=redis")
		}
	case BusNATS:
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when EVENT_BUS=nats")
		}
	case BusNone:
	default:
		return nil, fmt.Errorf("EVENT_BUS must be one of redis, nats, none; got %q", cfg.EventBus)
	}

	cfg.JobRedFlags = splitList(os.Getenv("JOB_RED_FLAGS"))

	var err error
	if cfg.AITimeout, err = getDuration("AI_API_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.AICacheTTL, err = getDuration("AI_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.FollowUpScanInterval, err = getDuration("FOLLOW_UP_SCAN_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 30s or 1h, got %q", key, s)
	}
	return d, nil
}
