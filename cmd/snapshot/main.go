// Command snapshot exports one snapshot of the vault to S3-compatible
// storage and exits. It reads the same configuration as the server.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/config"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rpass/internal/server/snapshot"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogFormat, os.Stdout)

	repos, err := repomanager.New(ctx, cfg)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repos.Close()

	up, err := snapshot.NewS3Uploader(ctx, snapshot.S3Options{
		Region:       cfg.S3Region,
		AccessKey:    cfg.S3RootUser,
		SecretKey:    cfg.S3RootPassword,
		BaseEndpoint: cfg.S3BaseEndpoint,
		Bucket:       cfg.S3Bucket,
	})
	if err != nil {
		log.Fatalf("uploader init error: %v", err)
	}

	if _, err := snapshot.NewExporter(repos, up, logger).Export(ctx); err != nil {
		logger.Error(ctx, "export failed", "error", err)
		_ = repos.Close()
		os.Exit(1)
	}
}
