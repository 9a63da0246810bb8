// Package config handles configuration for the CLI client,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Protokol CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP endpoint.
//   - CachePath: path of the local SQLite cache (drafts and finalized
//     fingerprints).
//   - RequestTimeout: per-request deadline for calls to the server.
type Config struct {
	ServerEndpointAddr string
	CachePath          string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.CachePath = "protokol.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
