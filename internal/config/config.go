// Package config assembles runtime settings for the Librefy CLI from
// defaults, an optional JSON file, and command-line flags (later sources
// take precedence).
package config

import "time"

// Config holds runtime settings for the Librefy CLI.
//
// Fields:
//   - APIBaseURL: base URL of the Librefy HTTP API.
//   - RequestTimeout: per-request timeout for the HTTP client.
//   - DatabasePath: path of the local sqlite database (device id, session, caches).
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	APIBaseURL          string
	RequestTimeout      time.Duration
	DatabasePath        string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:3000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "librefy.db"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
