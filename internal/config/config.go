// Package config loads scandash settings from defaults, an optional YAML
// file, .env files and SCANDASH_* environment variables, in increasing
// order of precedence. Command-line flags bound by the CLI win over all.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (SCANDASH_HTTP_ADDR, ...).
const EnvPrefix = "SCANDASH"

// Config is the resolved application configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	API       APIConfig       `mapstructure:"api"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type RegistryConfig struct {
	Backend string `mapstructure:"backend"`
	Seed    bool   `mapstructure:"seed"`
}

type SimulatorConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Latency  time.Duration `mapstructure:"latency"`
}

type SessionsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// APIConfig limits how fast clients may start simulations.
type APIConfig struct {
	ScanRate  float64 `mapstructure:"scan_rate"`
	ScanBurst int     `mapstructure:"scan_burst"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// NewViper returns a viper instance with every default registered and
// environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("registry.backend", "memory")
	v.SetDefault("registry.seed", true)
	v.SetDefault("simulator.tick_interval", "800ms")
	v.SetDefault("simulator.settle_delay", "1s")
	v.SetDefault("refresh.interval", "10s")
	v.SetDefault("refresh.latency", "1s")
	v.SetDefault("sessions.ttl", "5m")
	v.SetDefault("api.scan_rate", 1.0)
	v.SetDefault("api.scan_burst", 3)
	v.SetDefault("metrics.enabled", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads the first-listed files first; variables already set in
// the environment are never overwritten. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env.local", ".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads file (or config.yaml from the working directory and
// ~/.scandash when file is empty) into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".scandash"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Registry.Backend) {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("registry.backend %q: want memory or sqlite", c.Registry.Backend))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level %q: %w", c.Log.Level, err))
	}
	for name, d := range map[string]time.Duration{
		"simulator.tick_interval": c.Simulator.TickInterval,
		"simulator.settle_delay":  c.Simulator.SettleDelay,
		"refresh.interval":        c.Refresh.Interval,
		"sessions.ttl":            c.Sessions.TTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.Refresh.Latency < 0 {
		errs = append(errs, fmt.Errorf("refresh.latency must not be negative, got %s", c.Refresh.Latency))
	}
	if c.API.ScanRate <= 0 {
		errs = append(errs, fmt.Errorf("api.scan_rate must be positive, got %v", c.API.ScanRate))
	}
	if c.API.ScanBurst < 1 {
		errs = append(errs, fmt.Errorf("api.scan_burst must be at least 1, got %d", c.API.ScanBurst))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
