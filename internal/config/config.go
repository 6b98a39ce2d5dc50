package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config maps the entire application configuration.
type Config struct {
	Server struct {
		Port        int    `mapstructure:"port"`
		BaseURL     string `mapstructure:"base_url"`
		FallbackURL string `mapstructure:"fallback_url"` // where unknown/expired short codes redirect to
	} `mapstructure:"server"`

	Database struct {
		Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Cache struct {
		Addr     string `mapstructure:"addr"` // empty means in-memory session store
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"cache"`

	Auth struct {
		// SessionTTLSeconds bounds both the session store entries and the
		// cookie Max-Age. It is deliberately a single value: the two must
		// never drift apart.
		SessionTTLSeconds int `mapstructure:"session_ttl_seconds"`
		BcryptCost        int `mapstructure:"bcrypt_cost"`
	} `mapstructure:"auth"`

	Analytics struct {
		BufferSize  int    `mapstructure:"buffer_size"`
		WorkerCount int    `mapstructure:"worker_count"`
		IPInfoToken string `mapstructure:"ipinfo_token"` // empty disables geo lookups
	} `mapstructure:"analytics"`

	Purger struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"purger"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLSeconds) * time.Second
}

// Load reads the configuration using Viper. Values come from
// configs/config.yaml when present, with environment variable overrides
// (e.g. "cache.addr" becomes CACHE_ADDR) and defaults for every key.
func Load() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.fallback_url", "https://example.com")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "pvlink.db")
	viper.SetDefault("cache.addr", "")
	viper.SetDefault("cache.password", "")
	viper.SetDefault("cache.db", 0)
	viper.SetDefault("auth.session_ttl_seconds", 3600)
	viper.SetDefault("auth.bcrypt_cost", 10)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("analytics.ipinfo_token", "")
	viper.SetDefault("purger.interval_minutes", 5)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars cover everything.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
