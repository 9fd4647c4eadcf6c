// Command server runs the rpass vault server.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/rpass/internal/server"
	"github.com/dmitrijs2005/rpass/internal/server/config"
)

func main() {
	ctx := context.Background()

	app, err := server.NewApp(ctx, config.LoadConfig())
	if err != nil {
		log.Fatalf("rpass server: %v", err)
	}

	app.Run(ctx)
}
