package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "parse:\n  mode: async\n  workers: 8\noutput:\n  format: xml\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ModeAsync, cfg.Parse.Mode)
	assert.Equal(t, 8, cfg.Parse.Workers)
	assert.Equal(t, FormatXML, cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ICSITEMS_PARSE_MODE", "async")
	t.Setenv("ICSITEMS_LOGGING_LEVEL", "debug")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ModeAsync, cfg.Parse.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("parse.mode", "parallel")
	v.Set("parse.workers", -1)

	cfg, err := Load(v)
	assert.Nil(t, cfg)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "parse.mode", verrs[0].Field)
	assert.Equal(t, "parse.workers", verrs[1].Field)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"unknown mode", func(c *Config) { c.Parse.Mode = "" }, "parse.mode"},
		{"negative workers", func(c *Config) { c.Parse.Workers = -2 }, "parse.workers"},
		{"unbounded workers", func(c *Config) { c.Parse.Workers = 0 }, ""},
		{"unknown format", func(c *Config) { c.Output.Format = "json" }, "output.format"},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"uppercase level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if tt.field == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelWarn,
	}

	for level, want := range tests {
		cfg := LoggingConfig{Level: level}
		assert.Equal(t, want, cfg.SlogLevel(), level)
	}
}
