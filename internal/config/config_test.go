package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Registry.Backend != "memory" || !cfg.Registry.Seed {
		t.Errorf("Registry = %+v", cfg.Registry)
	}
	if cfg.Simulator.TickInterval != 800*time.Millisecond {
		t.Errorf("TickInterval = %v, want 800ms", cfg.Simulator.TickInterval)
	}
	if cfg.Simulator.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", cfg.Simulator.SettleDelay)
	}
	if cfg.Refresh.Interval != 10*time.Second || cfg.Refresh.Latency != time.Second {
		t.Errorf("Refresh = %+v", cfg.Refresh)
	}
	if cfg.Sessions.TTL != 5*time.Minute {
		t.Errorf("Sessions.TTL = %v, want 5m", cfg.Sessions.TTL)
	}
	if cfg.API.ScanRate != 1 || cfg.API.ScanBurst != 3 {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scandash.yaml")
	data := `
http:
  addr: ":9090"
registry:
  backend: sqlite
  seed: false
simulator:
  tick_interval: 50ms
log:
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(NewViper(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.Registry.Backend != "sqlite" || cfg.Registry.Seed {
		t.Errorf("Registry = %+v", cfg.Registry)
	}
	if cfg.Simulator.TickInterval != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", cfg.Simulator.TickInterval)
	}
	if cfg.Simulator.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want default 1s", cfg.Simulator.SettleDelay)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() with missing explicit file should fail")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCANDASH_HTTP_ADDR", "127.0.0.1:7000")
	t.Setenv("SCANDASH_REFRESH_INTERVAL", "30s")

	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTP.Addr != "127.0.0.1:7000" {
		t.Errorf("HTTP.Addr = %q, want env value", cfg.HTTP.Addr)
	}
	if cfg.Refresh.Interval != 30*time.Second {
		t.Errorf("Refresh.Interval = %v, want 30s", cfg.Refresh.Interval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"registry.backend", "postgres", "registry.backend"},
		{"log.format", "xml", "log.format"},
		{"log.level", "loud", "log.level"},
		{"simulator.tick_interval", "0s", "simulator.tick_interval"},
		{"api.scan_burst", "0", "api.scan_burst"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			v := NewViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v, "")
			if err == nil {
				t.Fatalf("Load() with %s=%s should fail", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	if err := os.WriteFile(local, []byte("SCANDASH_TEST_A=local\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(shared, []byte("SCANDASH_TEST_A=shared\nSCANDASH_TEST_B=shared\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCANDASH_TEST_A", "")
	os.Unsetenv("SCANDASH_TEST_A")
	t.Setenv("SCANDASH_TEST_B", "")
	os.Unsetenv("SCANDASH_TEST_B")

	if err := LoadDotEnv(local, shared, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv("SCANDASH_TEST_A"); got != "local" {
		t.Errorf("SCANDASH_TEST_A = %q, want local", got)
	}
	if got := os.Getenv("SCANDASH_TEST_B"); got != "shared" {
		t.Errorf("SCANDASH_TEST_B = %q, want shared", got)
	}
}
