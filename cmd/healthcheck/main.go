// Command healthcheck pings an rpass server and exits non-zero when it does
// not answer. It is meant for container health probes.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/rpass/internal/client/client"
	"github.com/dmitrijs2005/rpass/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()

	c, err := client.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		cancel()
		_ = c.Close()
		log.Fatalf("ping %s: %v", cfg.ServerEndpointAddr, err)
	}
}
