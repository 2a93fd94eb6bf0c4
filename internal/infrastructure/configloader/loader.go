package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"position_aggregator/internal/domain/entity"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LendingAPIConfig holds lending data API specific configurations.
type LendingAPIConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimitPerSecond   float64 `yaml:"rateLimitPerSecond"`
	RateLimitBurst       int     `yaml:"rateLimitBurst"`
}

// PositionCacheConfig holds configuration for the raw position cache.
type PositionCacheConfig struct {
	TTLSeconds           int `yaml:"ttlSeconds"`
	PurgeIntervalSeconds int `yaml:"purgeIntervalSeconds"`
}

// WalletsConfig holds configuration for the wallet registry.
type WalletsConfig struct {
	FilePath string `yaml:"filePath"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
	FetchTimeoutSeconds   int `yaml:"fetch_timeout_seconds"`
	RPCCallTimeoutSeconds int `yaml:"rpc_call_timeout_seconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig               `yaml:"server"`
	Logging     LoggingConfig              `yaml:"logging"`
	LendingAPI  LendingAPIConfig           `yaml:"lendingAPI"`
	Cache       PositionCacheConfig        `yaml:"cache"`
	Wallets     WalletsConfig              `yaml:"wallets"`
	Performance PerformanceConfig          `yaml:"performance"`
	Networks    []entity.NetworkDefinition `yaml:"networks"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.FetchTimeoutSeconds <= 0 {
		cfg.Performance.FetchTimeoutSeconds = 15
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}

	if cfg.LendingAPI.RequestTimeoutMillis == 0 {
		cfg.LendingAPI.RequestTimeoutMillis = 10000
	}
	if cfg.LendingAPI.RateLimitPerSecond <= 0 {
		cfg.LendingAPI.RateLimitPerSecond = 10
	}
	if cfg.LendingAPI.RateLimitBurst <= 0 {
		cfg.LendingAPI.RateLimitBurst = 5
	}

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 60
	}
	if cfg.Cache.PurgeIntervalSeconds <= 0 {
		cfg.Cache.PurgeIntervalSeconds = 300
	}

	if cfg.Wallets.FilePath == "" {
		cfg.Wallets.FilePath = "data/wallets.txt"
	}

	for i := range cfg.Networks {
		if cfg.Networks[i].Source == "" {
			cfg.Networks[i].Source = entity.PositionSourceAPI
		}
	}

	return &cfg, nil
}
