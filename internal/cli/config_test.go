package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rfkit/rfkit/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() on missing file: %v", err)
	}
	if cfg.Plot.Scale != 1 || cfg.Plot.FigWidth != 7 {
		t.Errorf("plot defaults: %+v", cfg.Plot)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
[fdsn]
base_url = "https://example.org"

[plot]
scale = 2.5
fill_pos = "#3465a4"

[cache]
redis_addr = "localhost:6379"
ttl_hours = 48

[server]
addr = ":9000"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(): %v", err)
	}
	if cfg.FDSN.BaseURL != "https://example.org" {
		t.Errorf("base url = %q", cfg.FDSN.BaseURL)
	}
	if cfg.Plot.Scale != 2.5 || cfg.Plot.FillPos != "#3465a4" {
		t.Errorf("plot config: %+v", cfg.Plot)
	}
	// Unset keys keep their defaults.
	if cfg.Plot.FigWidth != 7 {
		t.Errorf("fig width = %g, want default 7", cfg.Plot.FigWidth)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.TTLHours != 48 {
		t.Errorf("cache config: %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "[plot\nscale = ")

	_, err := LoadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %q, want INVALID_CONFIG", errors.GetCode(err))
	}
}
