// Package config loads the companion's TOML configuration. Every value
// has a default matching the stock GhostStream deployment, so a missing
// file yields a fully working setup.
package config

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/spf13/viper"

	"github.com/ghoststream/companion/internal/logger"
	"github.com/ghoststream/companion/internal/netid"
	"github.com/ghoststream/companion/internal/readiness"
	"github.com/ghoststream/companion/internal/supervisor"
)

// ServerConfig locates the supervised server's HTTP surface.
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// LaunchConfig describes how to spawn the server.
type LaunchConfig struct {
	Command         string        `mapstructure:"command"`
	FallbackCommand string        `mapstructure:"fallback_command"`
	WorkDir         string        `mapstructure:"work_dir"`
	GracePeriod     time.Duration `mapstructure:"grace_period"`
}

// ReadinessConfig bounds the post-start readiness wait.
type ReadinessConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
}

// NetworkConfig drives the network-identity helpers.
type NetworkConfig struct {
	RouteProbeAddr    string `mapstructure:"route_probe_addr"`
	AccessPointSubnet string `mapstructure:"access_point_subnet"` // CIDR
}

// ControlConfig configures the localhost control API the tray UI calls.
type ControlConfig struct {
	Listen   string `mapstructure:"listen"`
	BasePath string `mapstructure:"base_path"`
}

// HistoryConfig enables the lifecycle-event audit sink.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Config is the companion's full configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Launch    LaunchConfig    `mapstructure:"launch"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	Network   NetworkConfig   `mapstructure:"network"`
	Control   ControlConfig   `mapstructure:"control"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       logger.Config   `mapstructure:"log"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{BaseURL: "http://localhost:8765"},
		Launch: LaunchConfig{
			Command:         supervisor.DefaultCommand,
			FallbackCommand: supervisor.DefaultFallbackCommand,
			GracePeriod:     supervisor.DefaultGracePeriod,
		},
		Readiness: ReadinessConfig{
			PollInterval: readiness.DefaultPollInterval,
			MaxWait:      readiness.DefaultMaxWait,
		},
		Network: NetworkConfig{
			RouteProbeAddr:    netid.DefaultRouteProbeAddr,
			AccessPointSubnet: netid.DefaultAccessPointPrefix.String(),
		},
		Control: ControlConfig{Listen: "127.0.0.1:8770", BasePath: "/api"},
		Log:     logger.Config{Level: "info"},
	}
}

// Load reads a TOML config file and merges it over the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks fields that would otherwise fail deep inside a call.
func (c Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if c.Launch.Command == "" {
		return fmt.Errorf("launch.command is required")
	}
	if c.Readiness.PollInterval < 0 || c.Readiness.MaxWait < 0 {
		return fmt.Errorf("readiness intervals cannot be negative")
	}
	if c.Network.AccessPointSubnet != "" {
		if _, err := netip.ParsePrefix(c.Network.AccessPointSubnet); err != nil {
			return fmt.Errorf("network.access_point_subnet: %w", err)
		}
	}
	if c.History.Enabled && c.History.DSN == "" {
		return fmt.Errorf("history.dsn is required when history is enabled")
	}
	return nil
}

// AccessPointPrefix parses the configured subnet, falling back to the
// GhostHub default on any problem. Validate catches bad values at load
// time; this keeps call sites infallible.
func (c Config) AccessPointPrefix() netip.Prefix {
	p, err := netip.ParsePrefix(c.Network.AccessPointSubnet)
	if err != nil {
		return netid.DefaultAccessPointPrefix
	}
	return p
}
