package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Upstream.BaseURL = "http://127.0.0.1"
	cfg.Upstream.HTTPTimeout = 2 * time.Second
	cfg.Upstream.UserAgent = "nextech-test/1.0"
	cfg.Cache.TTL = 1 * time.Minute
	cfg.Cache.RefreshTimeout = 5 * time.Second
	cfg.Aggregate.MaxConcurrency = 4
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Log.Level = "off"
	return cfg
}
