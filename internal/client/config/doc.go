// Package config loads runtime configuration for rpass client programs.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-ca string  CA bundle for TLS; plaintext when empty
//	-t int      per-call timeout (seconds)
//
// # JSON schema
//
// Durations accept strings like "5s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "tls_ca_file": "/etc/rpass/ca.pem",
//	  "timeout": "5s"
//	}
package config
