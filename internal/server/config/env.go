package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/rpass/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables understood by parseEnv.
const (
	EnvAddress          = "RPASS_ADDRESS"
	EnvStorageDriver    = "RPASS_STORAGE_DRIVER"
	EnvDatabaseDSN      = "RPASS_DATABASE_DSN"
	EnvBoltPath         = "RPASS_BOLT_PATH"
	EnvSecretKey        = "RPASS_SECRET_KEY"
	EnvSessionTTL       = "RPASS_SESSION_TTL"
	EnvLogFormat        = "RPASS_LOG_FORMAT"
	EnvTLSCertFile      = "RPASS_TLS_CERT_FILE"
	EnvTLSKeyFile       = "RPASS_TLS_KEY_FILE"
	EnvMaxHashes        = "RPASS_MAX_CONCURRENT_HASHES"
	EnvS3RootUser       = "RPASS_S3_ROOT_USER"
	EnvS3RootPassword   = "RPASS_S3_ROOT_PASSWORD"
	EnvS3Bucket         = "RPASS_S3_BUCKET"
	EnvS3Region         = "RPASS_S3_REGION"
	EnvS3BaseEndpoint   = "RPASS_S3_BASE_ENDPOINT"
	EnvSnapshotInterval = "RPASS_SNAPSHOT_INTERVAL"
)

// parseEnv overlays RPASS_* environment variables. When -env names a
// dotenv file it is loaded first; variables already present in the process
// environment win over the file. Malformed numbers or durations panic.
func parseEnv(config *Config) {
	if envFile := flagx.ConfigFileFlags().Env; envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(fmt.Errorf("load env file: %w", err))
		}
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			*dst = d
		}
	}

	str(EnvAddress, &config.EndpointAddrGRPC)
	str(EnvStorageDriver, &config.StorageDriver)
	str(EnvDatabaseDSN, &config.DatabaseDSN)
	str(EnvBoltPath, &config.BoltPath)
	str(EnvSecretKey, &config.SecretKey)
	dur(EnvSessionTTL, &config.SessionTTL)
	str(EnvLogFormat, &config.LogFormat)
	str(EnvTLSCertFile, &config.TLSCertFile)
	str(EnvTLSKeyFile, &config.TLSKeyFile)
	str(EnvS3RootUser, &config.S3RootUser)
	str(EnvS3RootPassword, &config.S3RootPassword)
	str(EnvS3Bucket, &config.S3Bucket)
	str(EnvS3Region, &config.S3Region)
	str(EnvS3BaseEndpoint, &config.S3BaseEndpoint)
	dur(EnvSnapshotInterval, &config.SnapshotInterval)

	if v, ok := os.LookupEnv(EnvMaxHashes); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvMaxHashes, err))
		}
		config.MaxConcurrentHashes = n
	}
}
