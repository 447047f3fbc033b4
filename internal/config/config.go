// Package config loads runtime settings for the bench command and examples.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables prefixed with COSTLRU_ (a .env file in the working
// directory is loaded first, if present).
//
//	COSTLRU_ENGINE_MAX_TOTAL_COST=67108864
//	COSTLRU_LOG_LEVEL=debug
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/costlru/lru"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "COSTLRU_"

type Config struct {
	Engine  EngineConfig  `yaml:"engine" envPrefix:"ENGINE_"`
	Cache   CacheConfig   `yaml:"cache" envPrefix:"CACHE_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// EngineConfig mirrors the limits of lru.Options.
type EngineConfig struct {
	Name         string `yaml:"name" env:"NAME"`
	MaxTotalCost int64  `yaml:"max_total_cost" env:"MAX_TOTAL_COST"`
	TargetCost   int64  `yaml:"target_cost" env:"TARGET_COST"`
	MaxEntryCost int64  `yaml:"max_entry_cost" env:"MAX_ENTRY_COST"`
	ForceReclaim bool   `yaml:"force_reclaim" env:"FORCE_RECLAIM"`
}

type CacheConfig struct {
	Shards int `yaml:"shards" env:"SHARDS"` // 0 = auto
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // text | json
}

type MetricsConfig struct {
	Addr      string `yaml:"addr" env:"ADDR"` // empty disables the endpoint
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Default returns the built-in settings: a 64 MiB budget swept down to
// 48 MiB, with single entries capped at 1 MiB.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			MaxTotalCost: 64 << 20,
			TargetCost:   48 << 20,
			MaxEntryCost: 1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr:      ":8080",
			Namespace: "costlru",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Join(ErrReadFile, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, errors.Join(ErrParsingConfig, err)
		}
	}

	// Ignore errors - the .env file might not exist and that's ok
	_ = godotenv.Load()

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects negative limits and unknown log formats.
func (c Config) Validate() error {
	e := c.Engine
	if e.MaxTotalCost < 0 || e.TargetCost < 0 || e.MaxEntryCost < 0 {
		return fmt.Errorf("%w: negative engine limit", ErrInvalidConfig)
	}
	if c.Cache.Shards < 0 {
		return fmt.Errorf("%w: negative shard count", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// EngineOptions converts the engine section into lru.Options. Hooks,
// metrics and logger are left for the caller.
func (c Config) EngineOptions() lru.Options {
	return lru.Options{
		Name:         c.Engine.Name,
		MaxTotalCost: c.Engine.MaxTotalCost,
		TargetCost:   c.Engine.TargetCost,
		MaxEntryCost: c.Engine.MaxEntryCost,
		ForceReclaim: c.Engine.ForceReclaim,
	}
}
