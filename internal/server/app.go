// Package server wires configuration, storage, sessions and services
// together and runs the gRPC endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/rpass/internal/cryptox"
	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/config"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rpass/internal/server/services"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/dmitrijs2005/rpass/internal/server/snapshot"
	"github.com/dmitrijs2005/rpass/internal/syncx"

	gs "github.com/dmitrijs2005/rpass/internal/server/grpc"
)

// sweepInterval bounds how long an expired session lingers in memory.
const sweepInterval = time.Minute

type App struct {
	config        *config.Config
	logger        logging.Logger
	repos         repomanager.RepositoryManager
	sessions      *sessions.Manager
	userService   *services.UserService
	recordService *services.RecordService
	exporter      *snapshot.Exporter
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stdout)

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	vault := cryptox.NewVault(cryptox.Params{Time: c.ArgonTime, Memory: c.ArgonMemoryKiB, Threads: c.ArgonThreads})
	locks := syncx.NewKeyedMutex()
	sm := sessions.NewManager([]byte(c.SecretKey), c.SessionTTL, logger)

	us := services.NewUserService(repos.Users(), vault, locks, sm, c.MaxConcurrentHashes, logger)
	rs := services.NewRecordService(repos.Records(), locks, c.MaxPayloadBytes, logger)

	app := &App{config: c, logger: logger, repos: repos, sessions: sm, userService: us, recordService: rs}

	if c.SnapshotInterval > 0 {
		up, err := snapshot.NewS3Uploader(ctx, snapshot.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("snapshot uploader init error: %w", err)
		}
		app.exporter = snapshot.NewExporter(repos, up, logger)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) newGRPCServer() *gs.GRPCServer {
	return gs.NewGRPCServer(gs.Options{
		Address:         app.config.EndpointAddrGRPC,
		TLSCertFile:     app.config.TLSCertFile,
		TLSKeyFile:      app.config.TLSKeyFile,
		MaxMessageBytes: app.config.MaxMessageBytes,
	}, app.logger, app.userService, app.recordService, app.sessions)
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.newGRPCServer().Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives, then
// closes the storage backend.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.StorageDriver, "address", app.config.EndpointAddrGRPC)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.Run(ctx, sweepInterval)
	}()

	if app.exporter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.exporter.Run(ctx, app.config.SnapshotInterval)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
