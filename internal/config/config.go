package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Provider struct {
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		RateLimit int    `yaml:"rate_limit"` // calls per minute
	} `yaml:"provider"`
	Cache struct {
		Backend           string `yaml:"backend"` // "memory" or "redis"
		DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
		Redis             struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	TTL struct {
		OverviewSeconds     int `yaml:"overview_seconds"`
		AssetListSeconds    int `yaml:"asset_list_seconds"`
		CandlesSeconds      int `yaml:"candles_seconds"`
		AssetDetailsSeconds int `yaml:"asset_details_seconds"`
	} `yaml:"ttl"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Markets  []string `yaml:"markets"`
	Schedule struct {
		WarmCron       string `yaml:"warm_cron"`
		InvalidateCron string `yaml:"invalidate_cron"`
		SnapshotCron   string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("PROVIDER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Provider.RateLimit = n
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PROXY_URL"); v != "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://api.polygon.io"
	}
	if c.Provider.RateLimit <= 0 {
		c.Provider.RateLimit = 5
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.DefaultTTLSeconds <= 0 {
		c.Cache.DefaultTTLSeconds = 300
	}
	if c.TTL.OverviewSeconds <= 0 {
		c.TTL.OverviewSeconds = 300
	}
	if c.TTL.AssetListSeconds <= 0 {
		c.TTL.AssetListSeconds = 300
	}
	if c.TTL.CandlesSeconds <= 0 {
		c.TTL.CandlesSeconds = 300
	}
	if c.TTL.AssetDetailsSeconds <= 0 {
		c.TTL.AssetDetailsSeconds = 60
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Markets) == 0 {
		c.Markets = []string{"stocks"}
	}
	if c.Schedule.WarmCron == "" {
		c.Schedule.WarmCron = "0 */5 * * * *" // every 5 minutes
	}
	if c.Schedule.InvalidateCron == "" {
		c.Schedule.InvalidateCron = "0 0 0 * * 2-6" // midnight after each session
	}
	if c.Schedule.SnapshotCron == "" {
		c.Schedule.SnapshotCron = "0 30 21 * * 1-5" // after the US close
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required (or PROVIDER_API_KEY)")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be \"memory\" or \"redis\", got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}
	return nil
}
