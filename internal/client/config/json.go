package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/rpass/internal/flagx"
	"github.com/dmitrijs2005/rpass/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	TLSCAFile          string         `json:"tls_ca_file"`
	Timeout            timex.Duration `json:"timeout"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. Keys
// missing from the file keep their current values. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlags().JSON
	if jsonConfigFile == "" {
		return
	}

	jc := JsonConfig{
		ServerEndpointAddr: cfg.ServerEndpointAddr,
		TLSCAFile:          cfg.TLSCAFile,
		Timeout:            timex.Duration{Duration: cfg.Timeout},
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.TLSCAFile = jc.TLSCAFile
	cfg.Timeout = time.Duration(jc.Timeout.Duration)
}
