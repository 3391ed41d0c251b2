// Package config holds the command line tool configuration.
package config

import (
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete icsitems configuration
type Config struct {
	Parse   ParseConfig   `mapstructure:"parse"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ParseConfig controls how calendars are processed
type ParseConfig struct {
	// Mode is "sync" or "async"
	Mode string `mapstructure:"mode"`
	// Workers bounds the async goroutine pool, 0 means unbounded
	Workers int `mapstructure:"workers"`
}

// OutputConfig controls what is printed
type OutputConfig struct {
	// Format is "text" or "xml"
	Format string `mapstructure:"format"`
}

// LoggingConfig controls the stderr logger
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Processing modes
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Output formats
const (
	FormatText = "text"
	FormatXML  = "xml"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// ICSITEMS_PARSE_WORKERS
const EnvPrefix = "ICSITEMS"

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Parse: ParseConfig{
			Mode:    ModeSync,
			Workers: 4,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// SetDefaults registers the defaults and environment overrides on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("parse.mode", defaults.Parse.Mode)
	v.SetDefault("parse.workers", defaults.Parse.Workers)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// SlogLevel maps Logging.Level to a slog level. Unknown values map to warn.
func (c *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
