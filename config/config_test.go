package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:8001/api" {
		t.Errorf("Unexpected API base URL: %s", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("Unexpected poll interval: %v", cfg.PollInterval)
	}
	if cfg.PreferredGroup != "Team zee" {
		t.Errorf("Unexpected preferred group: %s", cfg.PreferredGroup)
	}
}

func TestFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collabmeet.yaml")
	data := "api_base_url: https://chat.example.com/api\npoll_interval_seconds: 2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "https://chat.example.com/api" {
		t.Errorf("File override not applied: %s", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("File override not applied: %v", cfg.PollInterval)
	}
	// Keys absent from the file keep their defaults
	if cfg.PreferredGroup != "Team zee" {
		t.Errorf("Default lost after file load: %s", cfg.PreferredGroup)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("COLLABMEET_API_URL", "http://10.0.0.2/api")
	t.Setenv("COLLABMEET_POLL_INTERVAL", "30")
	t.Setenv("COLLABMEET_GROUP", "Team Beta")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "http://10.0.0.2/api" {
		t.Errorf("Env override not applied: %s", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("Env override not applied: %v", cfg.PollInterval)
	}
	if cfg.PreferredGroup != "Team Beta" {
		t.Errorf("Env override not applied: %s", cfg.PreferredGroup)
	}
}

func TestInvalidEnvIgnored(t *testing.T) {
	t.Setenv("COLLABMEET_POLL_INTERVAL", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("Invalid env value should keep default, got %v", cfg.PollInterval)
	}
}
