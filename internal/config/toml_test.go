package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if cfg.Server.URL != nil || cfg.Dashboard.Limit != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "http://analysis.local:9000"

[dashboard]
limit = 25
pearson-threshold = 0.5
cramer-v-threshold = 0.6
eta-threshold = 0.8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.URL == nil || *cfg.Server.URL != "http://analysis.local:9000" {
		t.Fatalf("unexpected server url %+v", cfg.Server)
	}
	if cfg.Dashboard.Limit == nil || *cfg.Dashboard.Limit != 25 {
		t.Fatalf("unexpected limit %+v", cfg.Dashboard)
	}
	if cfg.Dashboard.PearsonThreshold == nil || *cfg.Dashboard.PearsonThreshold != 0.5 {
		t.Fatalf("unexpected pearson threshold %+v", cfg.Dashboard)
	}
	if cfg.Dashboard.CramerVThreshold == nil || *cfg.Dashboard.CramerVThreshold != 0.6 {
		t.Fatalf("unexpected cramer threshold %+v", cfg.Dashboard)
	}
	if cfg.Dashboard.EtaThreshold == nil || *cfg.Dashboard.EtaThreshold != 0.8 {
		t.Fatalf("unexpected eta threshold %+v", cfg.Dashboard)
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nurl ="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
