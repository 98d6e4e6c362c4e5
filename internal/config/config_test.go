package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.BackendTimeout() != 15*time.Second || cfg.Timezone != "Asia/Kolkata" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("cache must be off by default")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: 9090
backend:
  base_url: https://api.example.test
  timeout_seconds: 5
cache:
  enabled: true
  addr: redis:6379
  ttl_seconds: 60
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BACKEND_USER_AGENT", "water-admin-test")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Backend.BaseURL != "https://api.example.test" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Backend.UserAgent != "water-admin-test" || cfg.JWT.Secret != "s3cret" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if !cfg.Cache.Enabled || cfg.CacheTTL() != time.Minute || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected cache/log config: %+v", cfg)
	}
}

func TestLoadFileRedisServiceEnv(t *testing.T) {
	t.Setenv("REDIS_SERVICE_HOST", "redis.default.svc")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Cache.Addr != "redis.default.svc:6379" {
		t.Fatalf("expected k8s redis address, got %q", cfg.Cache.Addr)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for cache without address")
	}
	cfg.Cache.Enabled = false
	cfg.Backend.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
