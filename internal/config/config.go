// Package config loads solvee settings from defaults, an optional YAML
// file, SOLVEE_ environment variables and bound command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/njchilds90/solvee/internal/logging"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

// EnvPrefix prefixes every environment variable, as in SOLVEE_LOG_LEVEL.
const EnvPrefix = "SOLVEE"

type Config struct {
	Strategy   string         `mapstructure:"strategy"`
	Pace       time.Duration  `mapstructure:"pace"`
	Format     string         `mapstructure:"format"`
	Operations []string       `mapstructure:"operations"`
	Hints      string         `mapstructure:"hints"`
	Log        logging.Config `mapstructure:"log"`
	Server     ServerConfig   `mapstructure:"server"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxSessions  int           `mapstructure:"max_sessions"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("strategy", strategy.Polynomial.Name)
	v.SetDefault("pace", time.Duration(0))
	v.SetDefault("format", "text")
	v.SetDefault("operations", []string{})
	v.SetDefault("hints", "")
	v.SetDefault("log.level", logging.Default().Level)
	v.SetDefault("log.format", string(logging.Default().Format))
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.max_sessions", 1024)
	v.SetDefault("server.session_ttl", time.Hour)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path when it is not empty and decodes the settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := strategy.Lookup(c.Strategy); err != nil {
		return err
	}
	if c.Pace < 0 {
		return fmt.Errorf("pace must not be negative: %s", c.Pace)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}
	if _, err := operation.Resolve(c.Operations...); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive")
	}
	return nil
}
