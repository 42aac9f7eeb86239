package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nonexistent")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "release" || cfg.Port != 8080 {
		t.Fatalf("defaults: mode=%q port=%d", cfg.Mode, cfg.Port)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("ping_period = %v", cfg.PingPeriod)
	}
	if cfg.ReadLimit != 65536 {
		t.Fatalf("read_limit = %d", cfg.ReadLimit)
	}
	if len(cfg.STUNServers) != 2 {
		t.Fatalf("stun_servers = %v", cfg.STUNServers)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := []byte("mode: debug\nport: 9090\nping_period: 30s\nsecret: s3cret\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), content, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_ENV", "test")
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9090 || cfg.Secret != "s3cret" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.PingPeriod != 30*time.Second {
		t.Fatalf("ping_period = %v", cfg.PingPeriod)
	}
	// Keys absent from the file keep their defaults.
	if cfg.ReadLimit != 65536 {
		t.Fatalf("read_limit = %d", cfg.ReadLimit)
	}
}
