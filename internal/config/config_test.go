package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/config"
)

var envKeys = []string{
	"TRACKER_PORT", "TRACKER_GRPC_PORT", "STORE_DRIVER", "DATABASE_URL", "DATABASE_MAX_CONNS",
	"SQLITE_PATH", "EVENT_BUS", "REDIS_URL", "NATS_URL", "AI_API_BASE_URL", "AI_API_TIMEOUT",
	"AI_CACHE_TTL", "JWT_SECRET", "FOLLOW_UP_SCAN_INTERVAL", "LOG_LEVEL", "LOG_FORMAT",
	"OTEL_COLLECTOR_URL", "JOB_RED_FLAGS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8082" || cfg.GRPCPort != "9092" {
		t.Errorf("ports = %s/%s", cfg.Port, cfg.GRPCPort)
	}
	if cfg.StoreDriver != config.DriverSQLite || cfg.SQLitePath != "tracker.db" {
		t.Errorf("store = %s %s", cfg.StoreDriver, cfg.SQLitePath)
	}
	if cfg.EventBus != config.BusNone {
		t.Errorf("EventBus = %s, want none", cfg.EventBus)
	}
	if cfg.AITimeout != 60*time.Second || cfg.AICacheTTL != 24*time.Hour || cfg.FollowUpScanInterval != time.Hour {
		t.Errorf("durations = %v %v %v", cfg.AITimeout, cfg.AICacheTTL, cfg.FollowUpScanInterval)
	}
	if cfg.LogFormat != "text" || cfg.LogLevel != "info" {
		t.Errorf("log = %s %s", cfg.LogFormat, cfg.LogLevel)
	}
}

func TestFromEnv_URLsSelectBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/tracker")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DATABASE_MAX_CONNS", "8")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.StoreDriver != config.DriverPostgres || cfg.EventBus != config.BusRedis {
		t.Errorf("driver = %s, bus = %s", cfg.StoreDriver, cfg.EventBus)
	}
	if cfg.JobRedFlags != nil {
		t.Errorf("JobRedFlags = %v, want nil", cfg.JobRedFlags)
	}
	if cfg.DatabaseMaxConn != 8 {
		t.Errorf("DatabaseMaxConn = %d", cfg.DatabaseMaxConn)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name, key, value, wantMsg string
	}{
		{"postgres without url", "STORE_DRIVER", "postgres", "DATABASE_URL"},
		{"unknown driver", "STORE_DRIVER", "mongo", "STORE_DRIVER"},
		{"nats without url", "EVENT_BUS", "nats", "NATS_URL"},
		{"unknown bus", "EVENT_BUS", "kafka", "EVENT_BUS"},
		{"bad timeout", "AI_API_TIMEOUT", "soon", "AI_API_TIMEOUT"},
		{"negative interval", "FOLLOW_UP_SCAN_INTERVAL", "-1h", "FOLLOW_UP_SCAN_INTERVAL"},
		{"bad max conns", "DATABASE_MAX_CONNS", "0", "DATABASE_MAX_CONNS"},
		{"bad log format", "LOG_FORMAT", "xml", "LOG_FORMAT"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(c.key, c.value)
			_, err := config.FromEnv()
			if err == nil {
				t.Fatalf("%s=%s: expected error", c.key, c.value)
			}
			if !strings.Contains(err.Error(), c.wantMsg) {
				t.Errorf("error %q does not mention %s", err, c.wantMsg)
			}
		})
	}
}

func TestFromEnv_RedFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOB_RED_FLAGS", "registration fee, ,security deposit ")
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if len(cfg.JobRedFlags) != 2 || cfg.JobRedFlags[0] != "registration fee" || cfg.JobRedFlags[1] != "security deposit" {
		t.Errorf("JobRedFlags = %q", cfg.JobRedFlags)
	}
}
