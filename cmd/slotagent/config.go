package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log         LogConfig      `yaml:"log"`
	Output      string         `yaml:"output"`
	MetricsAddr string         `yaml:"metrics_addr"`
	Checkpoint  string         `yaml:"checkpoint"`
	Calendar    CalendarConfig `yaml:"calendar"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CalendarConfig attaches the appointment rule to processes that declare
// an availability slot.
type CalendarConfig struct {
	Slots      []time.Time   `yaml:"slots"`
	SlotLength time.Duration `yaml:"slot_length"`
	MinGrain   time.Duration `yaml:"min_grain"`
}

func defaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Output: "text",
	}
}

// loadConfig reads a YAML config over the defaults. Environment variables in
// the file are expanded.
func loadConfig(path string) (*Config, error) {
	conf := defaultConfig()
	if path == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var input map[string]any
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &input); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := decodeConfig(input, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func decodeConfig(input map[string]any, output *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func (c LogConfig) logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
