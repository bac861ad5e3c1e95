// Package config holds the explicit runtime configuration for the service.
// A Config is constructed once at startup and handed to the components that
// need it; there is no process-wide lazily initialized singleton.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend selects the persistence implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendRemote Backend = "remote"
)

// duration lets TOML and env values use Go duration syntax ("10s", "24h").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the full runtime configuration.
type Config struct {
	ListenAddr  string   `toml:"listen_addr"`
	Debug       bool     `toml:"debug"`
	Backend     Backend  `toml:"backend"`
	FilePath    string   `toml:"file_path"`
	HTTPTimeout duration `toml:"http_timeout"`

	JSONBin JSONBinConfig `toml:"jsonbin"`
	AI      AIConfig      `toml:"ai"`
	Redis   RedisConfig   `toml:"redis"`
}

// JSONBinConfig configures the remote document store.
type JSONBinConfig struct {
	BaseURL   string `toml:"base_url"`
	BinID     string `toml:"bin_id"`
	MasterKey string `toml:"master_key"`
}

// AIConfig configures the plan-generation endpoint.
type AIConfig struct {
	Enabled  bool   `toml:"enabled"`
	BaseURL  string `toml:"base_url"`
	APIToken string `toml:"api_token"`
}

// RedisConfig configures the optional Redis instance used for create-request
// deduplication and task-list caching. An empty URL disables both.
type RedisConfig struct {
	URL       string   `toml:"url"`
	DedupeTTL duration `toml:"dedupe_ttl"`
	CacheTTL  duration `toml:"cache_ttl"`
}

// Timeout returns the per-call HTTP timeout.
func (c *Config) Timeout() time.Duration { return c.HTTPTimeout.Duration }

func defaults() *Config {
	return &Config{
		ListenAddr:  ":8080",
		Backend:     BackendMemory,
		FilePath:    "data/tasks.json",
		HTTPTimeout: duration{10 * time.Second},
		JSONBin:     JSONBinConfig{BaseURL: "https://api.jsonbin.io/v3"},
		Redis:       RedisConfig{DedupeTTL: duration{24 * time.Hour}},
	}
}

const defaultConfigFile = "tracker.toml"

// Load layers configuration: defaults, then the TOML file (the given path,
// or tracker.toml in the working directory when present), then TRACKER_*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TRACKER_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TRACKER_DEBUG"); v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRACKER_DEBUG: %w", err)
		}
		cfg.Debug = dbg
	}
	if v := os.Getenv("TRACKER_BACKEND"); v != "" {
		cfg.Backend = Backend(v)
	}
	if v := os.Getenv("TRACKER_FILE_PATH"); v != "" {
		cfg.FilePath = v
	}
	if v := os.Getenv("TRACKER_HTTP_TIMEOUT"); v != "" {
		if err := cfg.HTTPTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid TRACKER_HTTP_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("TRACKER_JSONBIN_BASE_URL"); v != "" {
		cfg.JSONBin.BaseURL = v
	}
	if v := os.Getenv("TRACKER_JSONBIN_BIN_ID"); v != "" {
		cfg.JSONBin.BinID = v
	}
	if v := os.Getenv("TRACKER_JSONBIN_MASTER_KEY"); v != "" {
		cfg.JSONBin.MasterKey = v
	}
	if v := os.Getenv("TRACKER_AI_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRACKER_AI_ENABLED: %w", err)
		}
		cfg.AI.Enabled = enabled
	}
	if v := os.Getenv("TRACKER_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("TRACKER_AI_TOKEN"); v != "" {
		cfg.AI.APIToken = v
	}
	if v := os.Getenv("TRACKER_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("TRACKER_DEDUPE_TTL"); v != "" {
		if err := cfg.Redis.DedupeTTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid TRACKER_DEDUPE_TTL: %w", err)
		}
	}
	if v := os.Getenv("TRACKER_CACHE_TTL"); v != "" {
		if err := cfg.Redis.CacheTTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid TRACKER_CACHE_TTL: %w", err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendFile:
		if c.FilePath == "" {
			return fmt.Errorf("file backend requires file_path")
		}
	case BackendRemote:
		if c.JSONBin.BinID == "" || c.JSONBin.MasterKey == "" {
			return fmt.Errorf("remote backend requires jsonbin bin_id and master_key")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.AI.Enabled && (c.AI.BaseURL == "" || c.AI.APIToken == "") {
		return fmt.Errorf("enrichment requires ai base_url and api_token")
	}
	return nil
}
