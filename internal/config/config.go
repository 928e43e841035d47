// Package config loads the application configuration from YAML and
// environment variables with a predictable priority: explicit path, then
// CONFIG_PATH, then ./local.yaml, then environment only.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration for the feed cache components and the
// feedwarm binary.
type Config struct {
	Env           string              `yaml:"env" env:"ENV" env-default:"local"`
	DB            DBConfig            `yaml:"db"`
	UserDirectory UserDirectoryConfig `yaml:"user_directory"`
	Cache         CacheConfig         `yaml:"cache"`
	TTL           TTLConfig           `yaml:"ttl"`
	Feed          FeedConfig          `yaml:"feed"`
}

// DBConfig holds the relational store connection.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

// UserDirectoryConfig holds the remote profile service endpoint and the
// caching proxy tuning in front of it.
type UserDirectoryConfig struct {
	BaseURL       string        `yaml:"base_url" env:"USERDIR_BASE_URL"`
	Timeout       time.Duration `yaml:"timeout" env:"USERDIR_TIMEOUT" env-default:"2s"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"USERDIR_CACHE_TTL" env-default:"8760h"`
	CacheCapacity int           `yaml:"cache_capacity" env:"USERDIR_CACHE_CAPACITY" env-default:"10000"`
}

// CacheConfig tunes the tagged payload cache.
type CacheConfig struct {
	Capacity           int           `yaml:"capacity" env:"CACHE_CAPACITY" env-default:"10000"`
	NumShards          int           `yaml:"num_shards" env:"CACHE_NUM_SHARDS" env-default:"256"`
	DefaultTTL         time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
	EvictionPercentage int           `yaml:"eviction_percentage" env:"CACHE_EVICTION_PERCENTAGE" env-default:"10"`
	EvictionInterval   time.Duration `yaml:"eviction_interval" env:"CACHE_EVICTION_INTERVAL"`
}

// TTLConfig carries the per-resource payload TTLs.
type TTLConfig struct {
	FeedPage   time.Duration `yaml:"feed_page" env:"TTL_FEED_PAGE" env-default:"20s"`
	Comments   time.Duration `yaml:"comments" env:"TTL_COMMENTS" env-default:"20s"`
	Engagement time.Duration `yaml:"engagement" env:"TTL_ENGAGEMENT" env-default:"60s"`
}

// FeedConfig holds rendering settings.
type FeedConfig struct {
	BaseURL string `yaml:"base_url" env:"FEED_BASE_URL" env-default:"http://localhost:8080"`
}

// MustLoad is Load with a panic on error, for main functions.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration by priority: explicit path, CONFIG_PATH,
// ./local.yaml, environment only. Environment variables overlay file values
// in every file-based branch.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("read config %q: %w", p, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return fmt.Errorf("overlay env: %w", err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := readFile("local.yaml"); err != nil {
				return nil, err
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values. The database URL is the only setting
// with no usable default.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Env, validation.Required, validation.In("local", "dev", "prod")),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&c.DB,
		validation.Field(&c.DB.URL, validation.Required),
	); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	if err := validation.ValidateStruct(&c.Cache,
		validation.Field(&c.Cache.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.Cache.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.Cache.DefaultTTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.Cache.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if err := validation.ValidateStruct(&c.TTL,
		validation.Field(&c.TTL.FeedPage, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.TTL.Comments, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.TTL.Engagement, validation.Required, validation.Min(time.Duration(1))),
	); err != nil {
		return fmt.Errorf("ttl: %w", err)
	}

	return nil
}
