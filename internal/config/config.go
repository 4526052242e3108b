package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/Bixxler/nextech/internal/validation"
)

type Config struct {
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Aggregate AggregateConfig `mapstructure:"aggregate"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	NewStoriesPath string        `mapstructure:"new_stories_path"`
	ItemPath       string        `mapstructure:"item_path"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

type CacheConfig struct {
	TTL                  time.Duration `mapstructure:"ttl"`
	StaleWhileRevalidate bool          `mapstructure:"stale_while_revalidate"`
	RefreshTimeout       time.Duration `mapstructure:"refresh_timeout"`
}

type AggregateConfig struct {
	// MaxConcurrency caps in-flight item requests; zero or less means one per ID.
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	SortMode       string `mapstructure:"sort_mode"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ItemIDPlaceholder is substituted with the story ID in UpstreamConfig.ItemPath.
const ItemIDPlaceholder = "{id}"

func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:        "https://hacker-news.firebaseio.com",
			NewStoriesPath: "/v0/newstories.json",
			ItemPath:       "/v0/item/{id}.json",
			HTTPTimeout:    10 * time.Second,
			UserAgent:      "nextech/1.0 (https://github.com/Bixxler/nextech)",
		},
		Cache: CacheConfig{
			TTL:                  5 * time.Minute,
			StaleWhileRevalidate: true,
			RefreshTimeout:       1 * time.Minute,
		},
		Aggregate: AggregateConfig{
			MaxConcurrency: 16,
			SortMode:       "plain",
		},
		Server: ServerConfig{
			Address:         ":7236",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("upstream.base_url", cfg.Upstream.BaseURL)
	v.SetDefault("upstream.new_stories_path", cfg.Upstream.NewStoriesPath)
	v.SetDefault("upstream.item_path", cfg.Upstream.ItemPath)
	v.SetDefault("upstream.http_timeout", cfg.Upstream.HTTPTimeout)
	v.SetDefault("upstream.user_agent", cfg.Upstream.UserAgent)

	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.stale_while_revalidate", cfg.Cache.StaleWhileRevalidate)
	v.SetDefault("cache.refresh_timeout", cfg.Cache.RefreshTimeout)

	v.SetDefault("aggregate.max_concurrency", cfg.Aggregate.MaxConcurrency)
	v.SetDefault("aggregate.sort_mode", cfg.Aggregate.SortMode)

	v.SetDefault("server.address", cfg.Server.Address)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.cors_origins", cfg.Server.CORSOrigins)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "nextech")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	// NEXTECH_CACHE_TTL overrides cache.ttl
	v.SetEnvPrefix("NEXTECH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate normalizes the upstream base URL and rejects settings the
// pipeline cannot run with.
func (c *Config) Validate() error {
	base, err := validation.NewBaseURLValidator().ValidateAndNormalize(c.Upstream.BaseURL)
	if err != nil {
		return fmt.Errorf("upstream.base_url: %w", err)
	}
	c.Upstream.BaseURL = base

	if !strings.Contains(c.Upstream.ItemPath, ItemIDPlaceholder) {
		return fmt.Errorf("upstream.item_path must contain %s", ItemIDPlaceholder)
	}
	if c.Upstream.NewStoriesPath == "" {
		return fmt.Errorf("upstream.new_stories_path cannot be empty")
	}
	if c.Upstream.HTTPTimeout <= 0 {
		return fmt.Errorf("upstream.http_timeout must be positive, got %v", c.Upstream.HTTPTimeout)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Cache.RefreshTimeout <= 0 {
		return fmt.Errorf("cache.refresh_timeout must be positive, got %v", c.Cache.RefreshTimeout)
	}

	switch strings.ToLower(c.Aggregate.SortMode) {
	case "", "plain", "letters":
	default:
		return fmt.Errorf("aggregate.sort_mode must be plain or letters, got %q", c.Aggregate.SortMode)
	}

	if c.Log.File != "" {
		path, err := validation.NewFilePathValidator().ValidateAndSanitize(c.Log.File)
		if err != nil {
			return fmt.Errorf("log.file: %w", err)
		}
		c.Log.File = path
	}

	return nil
}

// fileConfig mirrors Config for TOML output with durations kept readable.
type fileConfig struct {
	Upstream struct {
		BaseURL        string `toml:"base_url"`
		NewStoriesPath string `toml:"new_stories_path"`
		ItemPath       string `toml:"item_path"`
		HTTPTimeout    string `toml:"http_timeout"`
		UserAgent      string `toml:"user_agent"`
	} `toml:"upstream"`
	Cache struct {
		TTL                  string `toml:"ttl"`
		StaleWhileRevalidate bool   `toml:"stale_while_revalidate"`
		RefreshTimeout       string `toml:"refresh_timeout"`
	} `toml:"cache"`
	Aggregate struct {
		MaxConcurrency int    `toml:"max_concurrency"`
		SortMode       string `toml:"sort_mode"`
	} `toml:"aggregate"`
	Server struct {
		Address         string   `toml:"address"`
		ShutdownTimeout string   `toml:"shutdown_timeout"`
		CORSOrigins     []string `toml:"cors_origins"`
	} `toml:"server"`
	Log struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`
}

func toFileConfig(config *Config) fileConfig {
	var fc fileConfig
	fc.Upstream.BaseURL = config.Upstream.BaseURL
	fc.Upstream.NewStoriesPath = config.Upstream.NewStoriesPath
	fc.Upstream.ItemPath = config.Upstream.ItemPath
	fc.Upstream.HTTPTimeout = config.Upstream.HTTPTimeout.String()
	fc.Upstream.UserAgent = config.Upstream.UserAgent

	fc.Cache.TTL = config.Cache.TTL.String()
	fc.Cache.StaleWhileRevalidate = config.Cache.StaleWhileRevalidate
	fc.Cache.RefreshTimeout = config.Cache.RefreshTimeout.String()

	fc.Aggregate.MaxConcurrency = config.Aggregate.MaxConcurrency
	fc.Aggregate.SortMode = config.Aggregate.SortMode

	fc.Server.Address = config.Server.Address
	fc.Server.ShutdownTimeout = config.Server.ShutdownTimeout.String()
	fc.Server.CORSOrigins = config.Server.CORSOrigins

	fc.Log.Level = config.Log.Level
	fc.Log.File = config.Log.File
	return fc
}

func Save(config *Config, path string) error {
	data, err := toml.Marshal(toFileConfig(config))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// DefaultPath is where GenerateDefaultConfig output is picked up by Load.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nextech", "config.toml")
}
