package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing config must not be an error: %v", err)
	}
	if cfg.Dashboard.Period != nil || cfg.Dashboard.Unit != nil || cfg.Dashboard.History != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[dashboard]\nperiod = 30\nunit = \"h\"\nhistory = false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dashboard.Period == nil || *cfg.Dashboard.Period != 30 {
		t.Fatalf("unexpected period: %v", cfg.Dashboard.Period)
	}
	if cfg.Dashboard.Unit == nil || *cfg.Dashboard.Unit != "h" {
		t.Fatalf("unexpected unit: %v", cfg.Dashboard.Unit)
	}
	if cfg.Dashboard.History == nil || *cfg.Dashboard.History {
		t.Fatalf("unexpected history: %v", cfg.Dashboard.History)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
