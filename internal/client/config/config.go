package config

import "time"

// Config holds runtime settings for the PhoenixLocker CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client checks that the server is reachable.
//   - TokenDecimals: decimal places used to read and print token amounts.
//   - ProfilePath: SQLite file remembering the last logged-in address.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	TokenDecimals       int
	ProfilePath         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.TokenDecimals = 6
	c.ProfilePath = "locker.db"
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
