// Package grpc exposes the rpass services over gRPC: handlers for every
// wire message, the session interceptor and connection tracking.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/services"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

const defaultRetryBackoff = 50 * time.Millisecond

// Options configure the listener and transport limits.
type Options struct {
	Address         string
	TLSCertFile     string
	TLSKeyFile      string
	MaxMessageBytes int
	// RetryBackoff is the pause before the single retry of a call that
	// failed with a storage error.
	RetryBackoff time.Duration
}

// GRPCServer implements wire.VaultServer.
type GRPCServer struct {
	opts     Options
	logger   logging.Logger
	users    *services.UserService
	records  *services.RecordService
	sessions *sessions.Manager
}

var _ wire.VaultServer = (*GRPCServer)(nil)

func NewGRPCServer(opts Options, l logging.Logger, us *services.UserService, rs *services.RecordService, sm *sessions.Manager) *GRPCServer {
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	return &GRPCServer{
		opts:     opts,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		records:  rs,
		sessions: sm,
	}
}

// NewServer builds the grpc.Server with interceptors, connection tracking,
// message limits and optional TLS, and registers the service on it.
func (s *GRPCServer) NewServer() (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.sessionInterceptor),
		grpc.StatsHandler(newConnTracker(s.sessions)),
	}
	if s.opts.MaxMessageBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(s.opts.MaxMessageBytes))
	}
	if s.opts.TLSCertFile != "" || s.opts.TLSKeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(s.opts.TLSCertFile, s.opts.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS keypair: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	srv := grpc.NewServer(opts...)
	wire.RegisterVaultServer(srv, s)
	return srv, nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, err := s.NewServer()
	if err != nil {
		_ = lis.Close()
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String(), "tls", s.opts.TLSCertFile != "")

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
