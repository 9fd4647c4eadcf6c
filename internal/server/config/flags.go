package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/rpass/internal/flagx"
)

var serverFlags = []string{"-a", "-k", "-d", "-f", "-s", "-t", "-l", "-x", "-y", "-u", "-p", "-b", "-g", "-e", "-i"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-k string   storage driver: postgres, bolt or memory
//	-d string   PostgreSQL DSN
//	-f string   bolt database file
//	-s string   session token HMAC secret
//	-t int      session TTL, minutes
//	-l string   log format: json, text or logrus
//	-x string   TLS certificate file
//	-y string   TLS key file
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i int      snapshot interval, minutes (0 disables)
//
// os.Args is first filtered with flagx.FilterArgs so flags owned by other
// loaders (-c, -env) or by the test runner do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.StorageDriver, "k", config.StorageDriver, "storage driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BoltPath, "f", config.BoltPath, "bolt database file")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret key")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session TTL (in minutes)")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")
	fs.StringVar(&config.TLSCertFile, "x", config.TLSCertFile, "TLS certificate file")
	fs.StringVar(&config.TLSKeyFile, "y", config.TLSKeyFile, "TLS key file")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	snapshotInterval := fs.Int("i", int(config.SnapshotInterval.Minutes()), "snapshot interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		case "i":
			config.SnapshotInterval = time.Duration(*snapshotInterval) * time.Minute
		}
	})
}
