package config

import "time"

// Config holds settings for programs that talk to an rpass server through
// the client library.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - TLSCAFile: PEM bundle used to verify the server; plaintext when empty.
//   - Timeout: deadline applied to a single call.
type Config struct {
	ServerEndpointAddr string
	TLSCAFile          string
	Timeout            time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.TLSCAFile = ""
	c.Timeout = 5 * time.Second
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
