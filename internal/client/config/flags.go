package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/rpass/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. Only
// -a, -ca and -t are read; os.Args is filtered with flagx.FilterArgs so that
// other flags do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-ca", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.TLSCAFile, "ca", cfg.TLSCAFile, "CA bundle to verify the server certificate")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "per-call timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.Timeout = time.Duration(*timeout) * time.Second
		}
	})
}
