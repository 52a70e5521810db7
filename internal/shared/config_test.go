package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:8002/api/v1" {
			t.Errorf("expected base URL http://localhost:8002/api/v1, got %s", config.API.BaseURL)
		}

		if config.API.TimeoutSeconds != 30 {
			t.Errorf("expected timeout 30s, got %d", config.API.TimeoutSeconds)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Database.Path != "./soundgraph.db" {
			t.Errorf("expected database path ./soundgraph.db, got %s", config.Database.Path)
		}

		if config.Import.PollIntervalSeconds != 2 {
			t.Errorf("expected poll interval 2s, got %d", config.Import.PollIntervalSeconds)
		}

		if config.Import.PollBudgetSeconds != 30 {
			t.Errorf("expected poll budget 30s, got %d", config.Import.PollBudgetSeconds)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://graph.example.com/api/v1"
timeout_seconds = 10
rate_limit = 5.0

[server]
host = "0.0.0.0"
port = 8080

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[import]
poll_interval_seconds = 1
poll_budget_seconds = 15
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://graph.example.com/api/v1" {
			t.Errorf("expected base URL https://graph.example.com/api/v1, got %s", config.API.BaseURL)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Import.PollBudgetSeconds != 15 {
			t.Errorf("expected poll budget 15s, got %d", config.Import.PollBudgetSeconds)
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.API.BaseURL = "https://saved.example.com/api/v1"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}

		if loaded.API.BaseURL != "https://saved.example.com/api/v1" {
			t.Errorf("expected saved base URL to round trip, got %s", loaded.API.BaseURL)
		}
	})
}
