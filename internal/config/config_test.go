package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("Expected default address :8080, got %q", cfg.Server.Address)
	}
	if cfg.Redis.Debounce != 2*time.Second {
		t.Errorf("Expected debounce 2s, got %v", cfg.Redis.Debounce)
	}
	if cfg.Analysis.Concurrency != 8 {
		t.Errorf("Expected concurrency 8, got %d", cfg.Analysis.Concurrency)
	}
	if len(cfg.CORS.AllowOrigins) != 2 {
		t.Errorf("Expected 2 default origins, got %v", cfg.CORS.AllowOrigins)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := []byte(`
server:
  address: ":9000"
jwt:
  secret: from-file
  expiration: 1h
redis:
  addr: localhost:6379
s3:
  public_base_url: https://cdn.example.com/media
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), file, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ANALYSIS_CONCURRENCY", "3")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Errorf("Expected :9000 from file, got %q", cfg.Server.Address)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("Expected env to override file, got %q", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiration != time.Hour {
		t.Errorf("Expected 1h expiration, got %v", cfg.JWT.Expiration)
	}
	if cfg.Analysis.Concurrency != 3 {
		t.Errorf("Expected concurrency 3 from env, got %d", cfg.Analysis.Concurrency)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.S3.PublicBaseURL != "https://cdn.example.com/media" {
		t.Errorf("Unexpected redis/s3 config %+v %+v", cfg.Redis, cfg.S3)
	}
}
