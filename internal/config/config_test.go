package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `logging:
  level: info
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Calculator.DefaultDecimals != DefaultDecimals {
		t.Errorf("default_decimals: got %d, want %d", cfg.Calculator.DefaultDecimals, DefaultDecimals)
	}
	if cfg.Calculator.MaxMachines != DefaultMaxMachines {
		t.Errorf("max_machines: got %d, want %d", cfg.Calculator.MaxMachines, DefaultMaxMachines)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.GRPCPort != DefaultGRPCPort {
		t.Errorf("grpc_port: got %d, want %d", cfg.Server.GRPCPort, DefaultGRPCPort)
	}
	if cfg.Server.Auth.Enabled() {
		t.Error("auth should be disabled by default")
	}
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("logging.format: got %q, want %q", cfg.Logging.Format, DefaultLogFormat)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `calculator:
  default_decimals: 3
  max_machines: 64
server:
  http_port: 9091
  grpc_port: 0
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-valve-key
  cors_origins: ["https://factory.example"]
  live_interval: 2s
logging:
  level: debug
  format: text
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Calculator.DefaultDecimals != 3 {
		t.Errorf("default_decimals: got %d, want 3", cfg.Calculator.DefaultDecimals)
	}
	if cfg.Calculator.MaxMachines != 64 {
		t.Errorf("max_machines: got %d, want 64", cfg.Calculator.MaxMachines)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.GRPCPort != 0 {
		t.Errorf("grpc_port: got %d, want 0 (disabled)", cfg.Server.GRPCPort)
	}
	if !cfg.Server.Auth.Enabled() {
		t.Error("auth.mode: want apikey")
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-valve-key" {
		t.Errorf("header: got %q, want x-valve-key", cfg.Server.Auth.EffectiveHeader())
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://factory.example" {
		t.Errorf("cors_origins: got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.LiveInterval != 2*time.Second {
		t.Errorf("live_interval: got %v, want 2s", cfg.Server.LiveInterval)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VALVECALC_SERVER_HTTP_PORT", "7000")
	t.Setenv("VALVECALC_CALCULATOR_DEFAULT_DECIMALS", "2")
	t.Setenv("VALVECALC_LOGGING_LEVEL", "warn")
	t.Setenv("VALVECALC_SERVER_LIVE_INTERVAL", "500ms")
	t.Setenv("VALVECALC_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")

	p := writeConfig(t, `server:
  http_port: 9000
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 7000 {
		t.Errorf("http_port: got %d, want env override 7000", cfg.Server.HTTPPort)
	}
	if cfg.Calculator.DefaultDecimals != 2 {
		t.Errorf("default_decimals: got %d, want 2", cfg.Calculator.DefaultDecimals)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level: got %q, want warn", cfg.Logging.Level)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("cors_origins: got %v, want 2 entries", cfg.Server.CORSOrigins)
	}
	if cfg.Server.LiveInterval != 500*time.Millisecond {
		t.Errorf("live_interval: got %v, want 500ms", cfg.Server.LiveInterval)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_VALVE_KEY", "supersecret")
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: TEST_VALVE_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"decimals too high", "calculator:\n  default_decimals: 12\n"},
		{"negative max machines", "calculator:\n  max_machines: -1\n"},
		{"port out of range", "server:\n  http_port: 70000\n"},
		{"grpc port out of range", "server:\n  grpc_port: -1\n"},
		{"ports collide", "server:\n  http_port: 9000\n  grpc_port: 9000\n"},
		{"unknown auth mode", "server:\n  auth:\n    mode: oauth2\n"},
		{"apikey without env", "server:\n  auth:\n    mode: apikey\n    key_env: \"\"\n"},
		{"negative live interval", "server:\n  live_interval: -1s\n"},
		{"unknown level", "logging:\n  level: trace\n"},
		{"unknown format", "logging:\n  format: xml\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestHolder(t *testing.T) {
	h := NewHolder(Default())
	if h.Get().Server.HTTPPort != DefaultHTTPPort {
		t.Fatalf("Get: got %d", h.Get().Server.HTTPPort)
	}
	next := Default()
	next.Calculator.DefaultDecimals = 4
	h.Set(next)
	if h.Get().Calculator.DefaultDecimals != 4 {
		t.Errorf("after Set: got %d, want 4", h.Get().Calculator.DefaultDecimals)
	}
}

func TestWatch_Reload(t *testing.T) {
	p := writeConfig(t, "calculator:\n  default_decimals: 1\n")
	initial, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHolder(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, p, h, func(c *Config) { got <- c }) }()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	// A broken file must not reach onChange.
	if err := os.WriteFile(p, []byte("calculator: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for {
		select {
		case c := <-got:
			// A truncate-then-write can surface an empty file first.
			if c.Calculator.DefaultDecimals != 5 {
				continue
			}
			if h.Get() != c {
				t.Error("holder does not hold the reloaded config")
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned %v", err)
			}
			return
		case <-tick.C:
			_ = os.WriteFile(p, []byte("calculator:\n  default_decimals: 5\n"), 0o600)
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), NewHolder(Default()), nil)
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestDiff(t *testing.T) {
	prev := Default()
	if got := Diff(prev, Default()); len(got) != 0 {
		t.Fatalf("Diff of equal configs = %v, want none", got)
	}

	next := Default()
	next.Calculator.MaxMachines = 50
	next.Server.HTTPPort = 9090
	next.Server.CORSOrigins = []string{"https://factory.example"}
	next.Logging.Level = "debug"

	want := []Change{
		{Key: "calculator.max_machines", Old: "10000", New: "50"},
		{Key: "server.http_port", Old: "8080", New: "9090", Restart: true},
		{Key: "server.cors_origins", Old: "[]", New: "[https://factory.example]", Restart: true},
		{Key: "logging.level", Old: "info", New: "debug"},
	}
	if got := Diff(prev, next); !reflect.DeepEqual(got, want) {
		t.Errorf("Diff =\n%v\nwant\n%v", got, want)
	}
}

func TestReload_RestartOnlyChangeIsStored(t *testing.T) {
	p := writeConfig(t, "server:\n  http_port: 9191\n")
	h := NewHolder(Default())

	var calls int
	reload(p, h, func(*Config) { calls++ })
	if calls != 1 || h.Get().Server.HTTPPort != 9191 {
		t.Fatalf("calls = %d, http_port = %d", calls, h.Get().Server.HTTPPort)
	}

	// Same content again: nothing changed, no callback.
	reload(p, h, func(*Config) { calls++ })
	if calls != 1 {
		t.Errorf("unchanged reload called onChange (calls = %d)", calls)
	}

	// Invalid content keeps the previous config.
	if err := os.WriteFile(p, []byte("server:\n  http_port: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	reload(p, h, func(*Config) { calls++ })
	if calls != 1 || h.Get().Server.HTTPPort != 9191 {
		t.Errorf("invalid reload applied: calls = %d, http_port = %d", calls, h.Get().Server.HTTPPort)
	}
}
