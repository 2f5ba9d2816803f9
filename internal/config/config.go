// Package config holds the nexusd runtime configuration, loaded from an
// optional TOML file, environment variables and built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the complete nexusd configuration
type Config struct {
	// Server section
	Server ServerConfig `toml:"server" mapstructure:"server"`

	// Network is the simulated upstream endpoint label reported by the
	// ledger info endpoint. Display only; nothing is dialed.
	Network NetworkConfig `toml:"network" mapstructure:"network"`

	// Submit tunes the simulated consensus pipeline
	Submit SubmitConfig `toml:"submit" mapstructure:"submit"`

	// SeedDemo loads the demo genesis state on startup
	SeedDemo bool `toml:"seed_demo" mapstructure:"seed_demo"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the HTTP+websocket listener
type ServerConfig struct {
	Port int    `toml:"port" mapstructure:"port"`
	IP   string `toml:"ip" mapstructure:"ip"`

	// PollInterval is the ledger summary refresh period
	PollInterval time.Duration `toml:"poll_interval" mapstructure:"poll_interval"`

	// SummaryCacheSize bounds the recent-summary LRU cache
	SummaryCacheSize int `toml:"summary_cache_size" mapstructure:"summary_cache_size"`
}

// NetworkConfig labels the simulated network
type NetworkConfig struct {
	Endpoint string `toml:"endpoint" mapstructure:"endpoint"`
}

// SubmitConfig bounds the simulated consensus latency window
type SubmitConfig struct {
	LatencyMinMS int `toml:"latency_min_ms" mapstructure:"latency_min_ms"`
	LatencyMaxMS int `toml:"latency_max_ms" mapstructure:"latency_max_ms"`
}

// LatencyMin returns the lower latency bound as a duration
func (s SubmitConfig) LatencyMin() time.Duration {
	return time.Duration(s.LatencyMinMS) * time.Millisecond
}

// LatencyMax returns the upper latency bound as a duration
func (s SubmitConfig) LatencyMax() time.Duration {
	return time.Duration(s.LatencyMaxMS) * time.Millisecond
}

// GetConfigPath returns the path of the loaded config file, empty when
// running on defaults only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Validate checks configuration consistency
func Validate(c *Config) error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.PollInterval <= 0 {
		return fmt.Errorf("server.poll_interval must be positive: %s", c.Server.PollInterval)
	}
	if c.Server.SummaryCacheSize <= 0 {
		return fmt.Errorf("server.summary_cache_size must be positive: %d", c.Server.SummaryCacheSize)
	}
	if c.Submit.LatencyMinMS < 0 || c.Submit.LatencyMaxMS < c.Submit.LatencyMinMS {
		return fmt.Errorf("submit latency window invalid: min %dms max %dms",
			c.Submit.LatencyMinMS, c.Submit.LatencyMaxMS)
	}
	if c.Network.Endpoint == "" {
		return fmt.Errorf("network.endpoint cannot be empty")
	}
	return nil
}
