// Package config loads server settings from the environment and an optional
// config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreBolt   = "bolt"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds every server setting.
type Config struct {
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Store  StoreConfig  `mapstructure:"store"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Ads    AdsConfig    `mapstructure:"ads"`
	Filter FilterConfig `mapstructure:"filter"`

	Tracing         bool          `mapstructure:"tracing"`
	MetricsInterval time.Duration `mapstructure:"metrics_interval"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// TrustProxy keys rate limits on forwarding headers instead of the peer address
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type StoreConfig struct {
	// Kind is one of bolt, sqlite, redis or memory
	Kind string `mapstructure:"kind"`
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AdsConfig struct {
	NativeFrequency int `mapstructure:"native_frequency"`
	BannerFrequency int `mapstructure:"banner_frequency"`
}

type FilterConfig struct {
	// ClassifierURL is the brainrot classifier endpoint. Empty selects the
	// built-in keyword classifier.
	ClassifierURL     string        `mapstructure:"classifier_url"`
	ClassifierTimeout time.Duration `mapstructure:"classifier_timeout"`
}

// Error reports an invalid setting.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Load reads settings from the environment and, when configPath is not
// empty, from that file. Environment variables take precedence.
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	vip.SetDefault("port", "18910")
	vip.SetDefault("log_level", "info")
	vip.SetDefault("log_format", "console")
	vip.SetDefault("store.kind", StoreBolt)
	vip.SetDefault("store.path", defaultDBPath())
	vip.SetDefault("redis.addr", "localhost:6379")
	vip.SetDefault("redis.db", 0)
	vip.SetDefault("redis.prefix", "pulse:")
	vip.SetDefault("ads.native_frequency", 5)
	vip.SetDefault("ads.banner_frequency", 0)
	vip.SetDefault("filter.classifier_timeout", 10*time.Second)
	vip.SetDefault("tracing", false)
	vip.SetDefault("trust_proxy", false)
	vip.SetDefault("metrics_interval", 30*time.Second)
	vip.SetDefault("shutdown_timeout", 10*time.Second)

	// Unprefixed names shared with other tooling
	vip.BindEnv("log_level", "LOG_LEVEL")
	vip.BindEnv("log_format", "LOG_FORMAT")

	vip.BindEnv("port", "PULSE_PORT")
	vip.BindEnv("store.kind", "PULSE_STORE")
	vip.BindEnv("store.path", "PULSE_DB_PATH")
	vip.BindEnv("redis.addr", "PULSE_REDIS_ADDR")
	vip.BindEnv("redis.password", "PULSE_REDIS_PASSWORD")
	vip.BindEnv("redis.db", "PULSE_REDIS_DB")
	vip.BindEnv("redis.prefix", "PULSE_REDIS_PREFIX")
	vip.BindEnv("ads.native_frequency", "PULSE_NATIVE_AD_FREQUENCY")
	vip.BindEnv("ads.banner_frequency", "PULSE_BANNER_FREQUENCY")
	vip.BindEnv("filter.classifier_url", "PULSE_CLASSIFIER_URL")
	vip.BindEnv("filter.classifier_timeout", "PULSE_CLASSIFIER_TIMEOUT")
	vip.BindEnv("tracing", "PULSE_TRACING")
	vip.BindEnv("trust_proxy", "PULSE_TRUST_PROXY")
	vip.BindEnv("metrics_interval", "PULSE_METRICS_INTERVAL")
	vip.BindEnv("shutdown_timeout", "PULSE_SHUTDOWN_TIMEOUT")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Kind = strings.ToLower(strings.TrimSpace(cfg.Store.Kind))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreBolt, StoreSQLite:
		if c.Store.Path == "" {
			return &Error{Field: "store.path", Message: "required for " + c.Store.Kind + " store"}
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return &Error{Field: "redis.addr", Message: "required for redis store"}
		}
	case StoreMemory:
	default:
		return &Error{Field: "store.kind", Message: fmt.Sprintf("unknown store %q", c.Store.Kind)}
	}

	if c.Ads.NativeFrequency < 0 {
		return &Error{Field: "ads.native_frequency", Message: "must not be negative"}
	}
	if c.Ads.BannerFrequency < 0 {
		return &Error{Field: "ads.banner_frequency", Message: "must not be negative"}
	}
	if c.MetricsInterval <= 0 {
		return &Error{Field: "metrics_interval", Message: "must be positive"}
	}
	return nil
}

// defaultDBPath places the database under the XDG data directory, falling
// back to ~/.local/share.
func defaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "pulse", "pulse.db")
}
