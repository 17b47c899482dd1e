// internal/config/config_test.go
package config

import (
	"os"
	"testing"

	"github.com/xiaoliu2354/huobao-canvas/internal/storage"
)

func TestConfig_Load(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HomeDir == "" {
		t.Error("HomeDir should not be empty")
	}

	if cfg.AppDir == "" {
		t.Error("AppDir should not be empty")
	}

	// Verify AppDir exists
	if _, err := os.Stat(cfg.AppDir); os.IsNotExist(err) {
		t.Error("AppDir should be created")
	}
}

func TestSettings_Unconfigured(t *testing.T) {
	settings := NewSettings(storage.NewMemory())

	if settings.APIKey() != "" {
		t.Error("Expected empty API key before configuration")
	}
	if settings.BaseURL() != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", settings.BaseURL())
	}
	if settings.IsConfigured() {
		t.Error("Settings should report unconfigured")
	}
}

func TestSettings_SetAndClear(t *testing.T) {
	settings := NewSettings(storage.NewMemory())

	if err := settings.SetAPIKey("sk-test"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}
	if err := settings.SetBaseURL("https://proxy.example.com/v1"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}

	if !settings.IsConfigured() {
		t.Error("Settings should report configured")
	}
	if settings.APIKey() != "sk-test" {
		t.Errorf("Unexpected API key %q", settings.APIKey())
	}
	if settings.BaseURL() != "https://proxy.example.com/v1" {
		t.Errorf("Unexpected base URL %q", settings.BaseURL())
	}

	if err := settings.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if settings.IsConfigured() {
		t.Error("Settings should report unconfigured after Clear")
	}
	if settings.BaseURL() != DefaultBaseURL {
		t.Error("BaseURL should fall back to default after Clear")
	}
}

func TestSettings_EmptyValueRemoves(t *testing.T) {
	settings := NewSettings(storage.NewMemory())

	settings.SetAPIKey("sk-test")
	if err := settings.SetAPIKey(""); err != nil {
		t.Fatalf("SetAPIKey(\"\") failed: %v", err)
	}
	if settings.IsConfigured() {
		t.Error("Empty API key should remove the stored value")
	}
}
