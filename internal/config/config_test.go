package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func envMap(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Catalog.BaseURL != "https://fakestoreapi.com" {
		t.Errorf("BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want 10", cfg.Catalog.TimeoutSeconds)
	}
	if cfg.Catalog.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Catalog.MaxRetries)
	}
	if cfg.Catalog.CacheTTLSeconds != 3600 {
		t.Errorf("CacheTTLSeconds = %d, want 3600", cfg.Catalog.CacheTTLSeconds)
	}
	if cfg.Catalog.RateLimitMax != 100 {
		t.Errorf("RateLimitMax = %d, want 100", cfg.Catalog.RateLimitMax)
	}
	if cfg.Catalog.RateLimitWindowSeconds != 60 {
		t.Errorf("RateLimitWindowSeconds = %d, want 60", cfg.Catalog.RateLimitWindowSeconds)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr = %q, want empty", cfg.Redis.Addr)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, envMap(map[string]string{
		"FAKESTORE_API_URL":               "http://localhost:9000/",
		"FAKESTORE_API_TIMEOUT":           "5",
		"FAKESTORE_API_MAX_RETRIES":       "4",
		"FAKESTORE_API_CACHE_TTL":         "120",
		"FAKESTORE_API_RATE_LIMIT_MAX":    "10",
		"FAKESTORE_API_RATE_LIMIT_WINDOW": "30",
		"FAKESTORE_API_WARMUP_IDS":        "1, 2,3",
		"REDIS_URL":                       "localhost:6379",
		"DATABASE_DSN":                    "/tmp/fav.db",
		"PORT":                            "9090",
		"LOG_LEVEL":                       "debug",
		"LOG_PRETTY":                      "true",
	}))
	if err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}

	cc := cfg.ClientConfig()
	if cc.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cc.BaseURL)
	}
	if cc.Timeout != 5*time.Second || cc.MaxRetries != 4 || cc.CacheTTL != 2*time.Minute {
		t.Errorf("client config = %+v", cc)
	}
	if cc.RateLimitMax != 10 || cc.RateLimitWindow != 30*time.Second {
		t.Errorf("rate limit = %d/%v", cc.RateLimitMax, cc.RateLimitWindow)
	}
	if !reflect.DeepEqual(cfg.Catalog.WarmupIDs, []int{1, 2, 3}) {
		t.Errorf("WarmupIDs = %v", cfg.Catalog.WarmupIDs)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Database.DSN != "/tmp/fav.db" || cfg.Server.Port != "9090" {
		t.Errorf("infra config = %+v %+v %+v", cfg.Redis, cfg.Database, cfg.Server)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	tests := []string{"FAKESTORE_API_TIMEOUT", "FAKESTORE_API_RATE_LIMIT_MAX", "LOG_PRETTY", "FAKESTORE_API_WARMUP_IDS"}

	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			if err := applyEnv(&cfg, envMap(map[string]string{key: "abc"})); err == nil {
				t.Errorf("applyEnv() with %s=abc expected error", key)
			}
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	content := `
[catalog]
base_url = "http://file.example"
timeout_seconds = 7
max_retries = 5
warmup_ids = [1, 2]

[redis]
addr = "redis:6379"

[log]
level = "warn"
pretty = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("FAKESTORE_API_MAX_RETRIES", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Catalog.BaseURL != "http://file.example" {
		t.Errorf("BaseURL = %q, want file value", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.TimeoutSeconds != 7 {
		t.Errorf("TimeoutSeconds = %d, want 7", cfg.Catalog.TimeoutSeconds)
	}
	if cfg.Catalog.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want env value 2", cfg.Catalog.MaxRetries)
	}
	if cfg.Catalog.CacheTTLSeconds != 3600 {
		t.Errorf("CacheTTLSeconds = %d, want default 3600", cfg.Catalog.CacheTTLSeconds)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Log.Level != "warn" || !cfg.Log.Pretty {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(bad, []byte("[catalog\nbase_url ="), 0o600)
	if _, err := Load(bad); err == nil {
		t.Error("Load() expected error for malformed file")
	}

	t.Setenv("FAKESTORE_API_TIMEOUT", "0")
	if _, err := Load(""); err == nil {
		t.Error("Load() expected validation error for zero timeout")
	}
}
