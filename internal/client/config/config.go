// Package config loads runtime settings for the mymind CLI: defaults, then an
// optional JSON file (-c/-config), then command-line flags.
package config

import "time"

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client checks that the server is reachable.
//   - DatabasePath: local sqlite file (cached credentials, pending writes).
//   - Reconcile: journal failed remote writes and replay them on reload.
//   - RemoteWriteTimeout: upper bound for one background remote write.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	DatabasePath        string
	Reconcile           bool
	RemoteWriteTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "mymind.db"
	c.Reconcile = true
	c.RemoteWriteTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then JSON, then flags; later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
