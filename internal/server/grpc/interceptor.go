package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// publicMethods run without a session.
var publicMethods = map[string]bool{
	wire.FullMethod(wire.MethodRegister): true,
	wire.FullMethod(wire.MethodLogin):    true,
	wire.FullMethod(wire.MethodPing):     true,
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.SessionTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

// sessionInterceptor resolves the session token for every non-public
// method and stores the session in the request context.
func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token := tokenFromMetadata(ctx)
	conn, ok := sessions.ConnFromContext(ctx)
	if token == "" || !ok {
		return nil, s.toStatus(ctx, common.ErrUnauthorized)
	}

	sess, err := s.sessions.Resolve(conn, token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return handler(sessions.NewContext(ctx, sess), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	args := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start)}
	if conn, ok := sessions.ConnFromContext(ctx); ok {
		args = append(args, "conn", conn)
	}
	s.logger.Debug(ctx, "rpc handled", args...)

	return resp, err
}
