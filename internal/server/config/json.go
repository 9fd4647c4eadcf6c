package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rpass/internal/flagx"
	"github.com/dmitrijs2005/rpass/internal/timex"
)

// JsonConfig is the on-disk JSON layout. Durations accept "30m" style
// strings or integer nanoseconds (see timex.Duration).
type JsonConfig struct {
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc"`
	StorageDriver       string         `json:"storage_driver"`
	DatabaseDSN         string         `json:"database_dsn"`
	BoltPath            string         `json:"bolt_path"`
	SecretKey           string         `json:"secret_key"`
	SessionTTL          timex.Duration `json:"session_ttl"`
	LogFormat           string         `json:"log_format"`
	TLSCertFile         string         `json:"tls_cert_file"`
	TLSKeyFile          string         `json:"tls_key_file"`
	ArgonTime           uint32         `json:"argon_time"`
	ArgonMemoryKiB      uint32         `json:"argon_memory_kib"`
	ArgonThreads        uint8          `json:"argon_threads"`
	MaxConcurrentHashes int            `json:"max_concurrent_hashes"`
	MaxPayloadBytes     int            `json:"max_payload_bytes"`
	MaxMessageBytes     int            `json:"max_message_bytes"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	SnapshotInterval    timex.Duration `json:"snapshot_interval"`
}

func toJsonConfig(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:    c.EndpointAddrGRPC,
		StorageDriver:       c.StorageDriver,
		DatabaseDSN:         c.DatabaseDSN,
		BoltPath:            c.BoltPath,
		SecretKey:           c.SecretKey,
		SessionTTL:          timex.Duration{Duration: c.SessionTTL},
		LogFormat:           c.LogFormat,
		TLSCertFile:         c.TLSCertFile,
		TLSKeyFile:          c.TLSKeyFile,
		ArgonTime:           c.ArgonTime,
		ArgonMemoryKiB:      c.ArgonMemoryKiB,
		ArgonThreads:        c.ArgonThreads,
		MaxConcurrentHashes: c.MaxConcurrentHashes,
		MaxPayloadBytes:     c.MaxPayloadBytes,
		MaxMessageBytes:     c.MaxMessageBytes,
		S3RootUser:          c.S3RootUser,
		S3RootPassword:      c.S3RootPassword,
		S3Bucket:            c.S3Bucket,
		S3Region:            c.S3Region,
		S3BaseEndpoint:      c.S3BaseEndpoint,
		SnapshotInterval:    timex.Duration{Duration: c.SnapshotInterval},
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.StorageDriver = j.StorageDriver
	c.DatabaseDSN = j.DatabaseDSN
	c.BoltPath = j.BoltPath
	c.SecretKey = j.SecretKey
	c.SessionTTL = j.SessionTTL.Duration
	c.LogFormat = j.LogFormat
	c.TLSCertFile = j.TLSCertFile
	c.TLSKeyFile = j.TLSKeyFile
	c.ArgonTime = j.ArgonTime
	c.ArgonMemoryKiB = j.ArgonMemoryKiB
	c.ArgonThreads = j.ArgonThreads
	c.MaxConcurrentHashes = j.MaxConcurrentHashes
	c.MaxPayloadBytes = j.MaxPayloadBytes
	c.MaxMessageBytes = j.MaxMessageBytes
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.SnapshotInterval = j.SnapshotInterval.Duration
}

// parseJson overlays values from the JSON file named by -c/-config.
//
// The file is decoded on top of the current values, so keys absent from the
// file keep what defaults set. Without the flag nothing happens. An
// unreadable or malformed file panics: the server must not start on a
// half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlags().JSON
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJsonConfig(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}
