// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Audio  AudioConfig  `yaml:"audio"`
	Input  InputConfig  `yaml:"input"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig represents the engine loop configuration.
type EngineConfig struct {
	SetsPath       string `yaml:"sets_path" default:"sets"`
	TriggerKey     string `yaml:"trigger_key" default:"r" validate:"required,alphanum,min=1,max=16"`
	PollIntervalMs int    `yaml:"poll_interval_ms" default:"20" validate:"gte=5,lte=500"`
	CrossfadeMs    int    `yaml:"crossfade_ms" default:"250" validate:"gte=10,lte=5000"`
	ShutdownFadeMs int    `yaml:"shutdown_fade_ms" default:"500" validate:"gte=10,lte=10000"`
}

// AudioConfig represents the output device configuration.
// Every track is converted to this rate and channel count at load time.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate" default:"44100" validate:"oneof=22050 44100 48000"`
	Channels   int `yaml:"channels" default:"2" validate:"oneof=1 2"`
}

// InputConfig represents the key probe configuration.
type InputConfig struct {
	Probe    string         `yaml:"probe" default:"hotkey" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
}

// PollInterval returns the input polling cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Engine.PollIntervalMs) * time.Millisecond
}

// Crossfade returns the transition crossfade duration.
func (c *Config) Crossfade() time.Duration {
	return time.Duration(c.Engine.CrossfadeMs) * time.Millisecond
}

// ShutdownFade returns the final fade-out duration.
func (c *Config) ShutdownFade() time.Duration {
	return time.Duration(c.Engine.ShutdownFadeMs) * time.Millisecond
}

// Default returns a configuration populated with defaults only.
// Used when no config file is present; the CLI flags override on top.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	cfg.overrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("STEMLOOP_SETS_PATH"); v != "" {
		c.Engine.SetsPath = v
	}
	if v := os.Getenv("STEMLOOP_TRIGGER_KEY"); v != "" {
		c.Engine.TriggerKey = v
	}
	if v := os.Getenv("STEMLOOP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STEMLOOP_CROSSFADE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Engine.CrossfadeMs = ms
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Shutdown fade shorter than the crossfade would make stopping feel
	// more abrupt than a transition; reject the inversion outright.
	if c.Engine.ShutdownFadeMs < c.Engine.CrossfadeMs {
		return errors.Newf("shutdown_fade_ms (%d) must be >= crossfade_ms (%d)",
			c.Engine.ShutdownFadeMs, c.Engine.CrossfadeMs)
	}

	return nil
}
