/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package config loads bot configuration from defaults, an optional YAML
// file, and MONTREALBOT_-prefixed environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ConfusedSammie/MontrealBot/slippi"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DiscordToken is the bot token used for the gateway session.
	DiscordToken string `koanf:"discord_token"`

	// AllowedChannelID restricts commands to one channel; the admin user
	// is exempt.
	AllowedChannelID string `koanf:"allowed_channel_id"`

	// AdminUserID may run admin commands and use the bot anywhere.
	AdminUserID string `koanf:"admin_user_id"`

	// StartggURL is the start.gg GraphQL endpoint.
	StartggURL string `koanf:"startgg_url"`

	// StartggBearer authenticates start.gg API calls.
	StartggBearer string `koanf:"startgg_bearer"`

	// SlippiURL is the Slippi ranked GraphQL gateway.
	SlippiURL string `koanf:"slippi_url"`

	// PollIntervalSeconds is the live-results polling cadence per
	// tracked event.
	PollIntervalSeconds int `koanf:"poll_interval_seconds"`

	// DataDir holds the JSON state files (tags, events, leaderboard
	// snapshot).
	DataDir string `koanf:"data_dir"`

	// MetricsAddr, when set, serves Prometheus metrics (e.g. ":9090").
	MetricsAddr string `koanf:"metrics_addr"`

	// CacheBucket, when set, backs the long-TTL web cache with S3.
	CacheBucket string `koanf:"cache_bucket"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		StartggURL:          "https://api.start.gg/gql/alpha",
		SlippiURL:           slippi.DefaultAPIURL,
		PollIntervalSeconds: 15,
		DataDir:             ".",
	}
}

// PollInterval returns the polling cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Load builds a Config by layering defaults, an optional YAML file named
// by MONTREALBOT_CONFIG, and MONTREALBOT_* environment variables
// (highest precedence).
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("MONTREALBOT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// MONTREALBOT_DISCORD_TOKEN -> discord_token, etc. Underscores are
	// preserved to match the koanf struct tags.
	envProvider := env.Provider("MONTREALBOT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "montrealbot_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg,
		koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New("discord_token must be set")
	}
	if cfg.StartggBearer == "" {
		return nil, errors.New("startgg_bearer must be set")
	}
	if cfg.AllowedChannelID == "" {
		return nil, errors.New("allowed_channel_id must be set")
	}
	if cfg.PollIntervalSeconds <= 0 {
		return nil, errors.New("poll_interval_seconds must be positive")
	}

	return &cfg, nil
}
