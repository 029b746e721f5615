package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"insightgen/internal/inventory"
)

var configKeys = []string{
	"DATA_PATH", "AIOPS_BASE_URL", "AIOPS_TOKEN", "AIOPS_DOMAIN", "AIOPS_DRY_RUN",
	"AIOPS_REQUEST_TIMEOUT_SECONDS", "AIOPS_UI_URL", "AIOPS_SEED",
	"AIOPS_DEVICE_COUNT", "AIOPS_DEVICE_SELECTION", "AIOPS_DEVICE_SOURCE",
	"AIOPS_DEVICE_FALLBACK", "AIOPS_DEVICE_FETCH_RETRIES",
}

// clearEnv unsets every variable the loader reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := FromEnv(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AIOps.BaseURL != "http://localhost:4047" {
		t.Errorf("BaseURL = %q", cfg.AIOps.BaseURL)
	}
	if got := cfg.AIOps.InsightsEndpoint(); got != "http://localhost:4047/api/platform/ai-ops-insights/v1/insights" {
		t.Errorf("InsightsEndpoint = %q", got)
	}
	if cfg.AIOps.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.AIOps.Timeout)
	}
	if cfg.Devices.Count != 50 || cfg.Devices.Selection != inventory.PolicyRandom {
		t.Errorf("Devices = %+v", cfg.Devices)
	}
	if cfg.Devices.Source != inventory.SourceGenerate || cfg.Devices.Fallback != inventory.FallbackSynthetic {
		t.Errorf("Devices = %+v", cfg.Devices)
	}
	if cfg.UIURL != "http://localhost:4047/aiops/insights" {
		t.Errorf("UIURL = %q", cfg.UIURL)
	}
	if cfg.Seed != 0 || cfg.AIOps.DryRun {
		t.Errorf("Seed = %d, DryRun = %v", cfg.Seed, cfg.AIOps.DryRun)
	}
	if cfg.CacheDir != filepath.Join(dir, "cache") {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if _, err := os.Stat(cfg.LogDir); err != nil {
		t.Errorf("log dir not created: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	data := t.TempDir()
	t.Setenv("DATA_PATH", data)
	t.Setenv("AIOPS_BASE_URL", "https://aiops.example.com/")
	t.Setenv("AIOPS_TOKEN", "secret-token-value")
	t.Setenv("AIOPS_DOMAIN", "target.example.com")
	t.Setenv("AIOPS_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("AIOPS_DEVICE_COUNT", "3")
	t.Setenv("AIOPS_DEVICE_SELECTION", "Sequential")
	t.Setenv("AIOPS_DEVICE_SOURCE", "fetch")
	t.Setenv("AIOPS_DEVICE_FALLBACK", "none")
	t.Setenv("AIOPS_SEED", "42")
	t.Setenv("AIOPS_DRY_RUN", "true")

	cfg, err := FromEnv("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AIOps.BaseURL != "https://aiops.example.com" {
		t.Errorf("BaseURL = %q", cfg.AIOps.BaseURL)
	}
	if cfg.AIOps.Token != "secret-token-value" || cfg.AIOps.TargetDomain != "target.example.com" {
		t.Errorf("AIOps = %+v", cfg.AIOps)
	}
	if cfg.AIOps.Timeout != 5*time.Second || !cfg.AIOps.DryRun {
		t.Errorf("AIOps = %+v", cfg.AIOps)
	}
	if cfg.Devices.Count != 3 || cfg.Devices.Selection != inventory.PolicySequential {
		t.Errorf("Devices = %+v", cfg.Devices)
	}
	if cfg.Devices.Source != inventory.SourceFetch || cfg.Devices.Fallback != inventory.FallbackNone {
		t.Errorf("Devices = %+v", cfg.Devices)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d", cfg.Seed)
	}
	if cfg.UIURL != "https://aiops.example.com/aiops/insights" {
		t.Errorf("UIURL = %q", cfg.UIURL)
	}
	if cfg.DataPath != data {
		t.Errorf("DataPath = %q", cfg.DataPath)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"AIOPS_DEVICE_COUNT", "many"},
		{"AIOPS_REQUEST_TIMEOUT_SECONDS", "0"},
		{"AIOPS_DEVICE_SELECTION", "weighted"},
		{"AIOPS_DEVICE_SOURCE", "ldap"},
		{"AIOPS_DEVICE_FALLBACK", "maybe"},
		{"AIOPS_SEED", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATA_PATH", t.TempDir())
			t.Setenv(tt.key, tt.value)

			if _, err := FromEnv(""); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
