package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xraph/courier"
	"github.com/xraph/courier/api"
	"github.com/xraph/courier/event"
	"github.com/xraph/courier/history"
	"github.com/xraph/courier/subscription"
)

// config is the daemon configuration file.
type config struct {
	Addr            string         `yaml:"addr"`
	Prefix          string         `yaml:"prefix"`
	MetricsPath     string         `yaml:"metrics_path"`
	LogLevel        string         `yaml:"log_level"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Relay           courier.Config `yaml:"relay"`
	Redis           redisConfig    `yaml:"redis"`

	// Subscriptions are registered at startup.
	Subscriptions []subscriptionConfig `yaml:"subscriptions"`
}

// redisConfig enables the Redis history store when Addr is set.
type redisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type subscriptionConfig struct {
	URL         string            `yaml:"url"`
	Description string            `yaml:"description"`
	Events      []string          `yaml:"events"`
	Addresses   []string          `yaml:"addresses"`
	DisputeIDs  []string          `yaml:"dispute_ids"`
	Secret      string            `yaml:"secret"`
	Metadata    map[string]string `yaml:"metadata"`
}

func defaultConfig() config {
	return config{
		Addr:            ":8080",
		Prefix:          api.DefaultPrefix,
		MetricsPath:     "/metrics",
		LogLevel:        "info",
		ShutdownTimeout: 30 * time.Second,
		Relay:           courier.DefaultConfig(),
		Redis:           redisConfig{Key: history.DefaultRedisKey},
	}
}

// loadConfig overlays the YAML file at path onto the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	for i, s := range c.Subscriptions {
		for _, t := range s.Events {
			if !event.Type(t).Known() {
				return fmt.Errorf("subscriptions[%d]: unknown event type %q", i, t)
			}
		}
	}
	return c.Relay.Validate()
}

func (c config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// input converts a configured subscription into a registry input.
func (s subscriptionConfig) input() subscription.Input {
	in := subscription.Input{
		URL:         s.URL,
		Description: s.Description,
		Addresses:   s.Addresses,
		Secret:      s.Secret,
		Metadata:    s.Metadata,
	}
	for _, t := range s.Events {
		in.EventTypes = append(in.EventTypes, event.Type(t))
	}
	for _, d := range s.DisputeIDs {
		in.DisputeIDs = append(in.DisputeIDs, d)
	}
	return in
}
