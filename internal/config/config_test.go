package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Upstream.BaseURL != "https://hacker-news.firebaseio.com" {
		t.Errorf("Upstream.BaseURL = %s, want hacker-news base", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.NewStoriesPath != "/v0/newstories.json" {
		t.Errorf("Upstream.NewStoriesPath = %s, want /v0/newstories.json", cfg.Upstream.NewStoriesPath)
	}
	if cfg.Upstream.ItemPath != "/v0/item/{id}.json" {
		t.Errorf("Upstream.ItemPath = %s, want /v0/item/{id}.json", cfg.Upstream.ItemPath)
	}
	if cfg.Upstream.HTTPTimeout != 10*time.Second {
		t.Errorf("Upstream.HTTPTimeout = %v, want 10s", cfg.Upstream.HTTPTimeout)
	}
	if cfg.Upstream.UserAgent == "" {
		t.Error("Upstream.UserAgent should not be empty")
	}

	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if !cfg.Cache.StaleWhileRevalidate {
		t.Error("Cache.StaleWhileRevalidate should default to true")
	}

	if cfg.Aggregate.MaxConcurrency != 16 {
		t.Errorf("Aggregate.MaxConcurrency = %d, want 16", cfg.Aggregate.MaxConcurrency)
	}
	if cfg.Aggregate.SortMode != "plain" {
		t.Errorf("Aggregate.SortMode = %s, want plain", cfg.Aggregate.SortMode)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Run from an empty directory so ./config.toml cannot be picked up
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.Server.Address != ":7236" {
		t.Errorf("Server.Address = %s, want :7236", cfg.Server.Address)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[upstream]
base_url = "http://localhost:9999/"
http_timeout = "3s"
user_agent = "test-agent"

[cache]
ttl = "1m"
stale_while_revalidate = false

[aggregate]
max_concurrency = 2
sort_mode = "letters"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Upstream.BaseURL != "http://localhost:9999" {
		t.Errorf("Upstream.BaseURL = %s, want trailing slash stripped", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.HTTPTimeout != 3*time.Second {
		t.Errorf("Upstream.HTTPTimeout = %v, want 3s", cfg.Upstream.HTTPTimeout)
	}
	if cfg.Upstream.UserAgent != "test-agent" {
		t.Errorf("Upstream.UserAgent = %s, want 'test-agent'", cfg.Upstream.UserAgent)
	}
	if cfg.Cache.TTL != 1*time.Minute {
		t.Errorf("Cache.TTL = %v, want 1m", cfg.Cache.TTL)
	}
	if cfg.Cache.StaleWhileRevalidate {
		t.Error("Cache.StaleWhileRevalidate = true, want false")
	}
	if cfg.Aggregate.MaxConcurrency != 2 {
		t.Errorf("Aggregate.MaxConcurrency = %d, want 2", cfg.Aggregate.MaxConcurrency)
	}
	if cfg.Aggregate.SortMode != "letters" {
		t.Errorf("Aggregate.SortMode = %s, want letters", cfg.Aggregate.SortMode)
	}
	// untouched keys keep their defaults
	if cfg.Upstream.ItemPath != "/v0/item/{id}.json" {
		t.Errorf("Upstream.ItemPath = %s, want default", cfg.Upstream.ItemPath)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(configPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NEXTECH_CACHE_TTL", "90s")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 90s from env", cfg.Cache.TTL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad scheme", "[upstream]\nbase_url = \"ftp://example.org\"\n"},
		{"item path without placeholder", "[upstream]\nitem_path = \"/v0/item.json\"\n"},
		{"zero ttl", "[cache]\nttl = \"0s\"\n"},
		{"unknown sort mode", "[aggregate]\nsort_mode = \"random\"\n"},
		{"log file traversal", "[log]\nfile = \"/var/log/../../etc/passwd\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(configPath); err == nil {
				t.Error("Load() expected validation error, got nil")
			}
		})
	}
}

func TestLoad_LogFileExpanded(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configPath := filepath.Join(t.TempDir(), "log.toml")
	if err := os.WriteFile(configPath, []byte("[log]\nfile = \"~/logs/nextech.log\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(home, "logs", "nextech.log"); cfg.Log.File != want {
		t.Errorf("Log.File = %s, want %s", cfg.Log.File, want)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := defaultConfig()
	cfg.Upstream.UserAgent = "test-save-agent"
	cfg.Cache.TTL = 45 * time.Second
	cfg.Aggregate.MaxConcurrency = 3
	cfg.Server.CORSOrigins = []string{"http://localhost:4200"}

	savePath := filepath.Join(tmpDir, "nested", "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Upstream.UserAgent != cfg.Upstream.UserAgent {
		t.Errorf("Loaded Upstream.UserAgent = %s, want %s", loaded.Upstream.UserAgent, cfg.Upstream.UserAgent)
	}
	if loaded.Cache.TTL != cfg.Cache.TTL {
		t.Errorf("Loaded Cache.TTL = %v, want %v", loaded.Cache.TTL, cfg.Cache.TTL)
	}
	if loaded.Aggregate.MaxConcurrency != 3 {
		t.Errorf("Loaded Aggregate.MaxConcurrency = %d, want 3", loaded.Aggregate.MaxConcurrency)
	}
	if len(loaded.Server.CORSOrigins) != 1 || loaded.Server.CORSOrigins[0] != "http://localhost:4200" {
		t.Errorf("Loaded Server.CORSOrigins = %v", loaded.Server.CORSOrigins)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Generated config has Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.Upstream.NewStoriesPath != "/v0/newstories.json" {
		t.Errorf("Generated config has Upstream.NewStoriesPath = %s", cfg.Upstream.NewStoriesPath)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Upstream.UserAgent != "nextech-test/1.0" {
		t.Errorf("TestConfig Upstream.UserAgent = %s, want 'nextech-test/1.0'", cfg.Upstream.UserAgent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("TestConfig should validate: %v", err)
	}
}
