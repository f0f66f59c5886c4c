package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/bytedance/sonic"
)

type Config struct {
	ErrorThreshold int    `json:"error_threshold"`
	HistoryWindow  int    `json:"history_window"`
	LogLevel       string `json:"log_level"`
	SessionKey     string `json:"session_key"`
	SessionTTL     string `json:"session_ttl"`
}

func defaultConfig() *Config {
	return &Config{
		HistoryWindow: 50,
		LogLevel:      "info",
		SessionKey:    "booking",
		SessionTTL:    "30m",
	}
}

// loadConfig reads path over the defaults. A missing file keeps the
// defaults.
func loadConfig(path string) (*Config, error) {
	conf := defaultConfig()
	file, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return conf, nil
	}
	if err != nil {
		return nil, err
	}
	err = sonic.Unmarshal(file, conf)
	if err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) sessionTTL() time.Duration {
	ttl, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0
	}
	return ttl
}
