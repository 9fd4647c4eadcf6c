package grpc

import (
	"context"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/cryptox"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *wire.RegisterRequest) (*wire.RegisterResponse, error) {
	defer common.WipeByteArray(req.Password)

	var user *models.User
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.Register(ctx, req.UserName, req.Password)
		return err
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.RegisterResponse{UserID: user.ID}, nil
}

// Login first drops whatever session the connection holds, so a failed
// attempt always leaves the connection anonymous.
func (s *GRPCServer) Login(ctx context.Context, req *wire.LoginRequest) (*wire.LoginResponse, error) {
	defer common.WipeByteArray(req.Password)

	conn, ok := sessions.ConnFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Internal, "connection is not tracked")
	}
	s.sessions.EndConn(ctx, conn)

	var user *models.User
	var key *cryptox.Key
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		user, key, err = s.users.Authenticate(ctx, req.UserName, req.Password)
		return err
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	token, err := s.sessions.Open(ctx, conn, user, key)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.LoginResponse{Token: token, UserID: user.ID}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *wire.LogoutRequest) (*wire.LogoutResponse, error) {
	sess, ok := sessions.FromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, common.ErrUnauthorized)
	}
	s.sessions.End(ctx, sess)
	return &wire.LogoutResponse{}, nil
}

func (s *GRPCServer) ClearData(ctx context.Context, req *wire.ClearDataRequest) (*wire.ClearDataResponse, error) {
	defer common.WipeByteArray(req.Password)

	sess, ok := sessions.FromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, common.ErrUnauthorized)
	}

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.users.DeleteAll(ctx, sess.UserID, sess.UserName, req.Password)
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.ClearDataResponse{}, nil
}

func (s *GRPCServer) NewRecord(ctx context.Context, req *wire.NewRecordRequest) (*wire.NewRecordResponse, error) {
	sess, _ := sessions.FromContext(ctx)

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.records.Create(ctx, sess, req.Name, req.Payload)
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.NewRecordResponse{}, nil
}

func (s *GRPCServer) ReadRecord(ctx context.Context, req *wire.ReadRecordRequest) (*wire.ReadRecordResponse, error) {
	sess, _ := sessions.FromContext(ctx)

	var payload []byte
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		payload, err = s.records.Read(ctx, sess, req.Name)
		return err
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.ReadRecordResponse{Payload: payload}, nil
}

func (s *GRPCServer) UpdateRecord(ctx context.Context, req *wire.UpdateRecordRequest) (*wire.UpdateRecordResponse, error) {
	sess, _ := sessions.FromContext(ctx)

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.records.Update(ctx, sess, req.Name, req.Payload)
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.UpdateRecordResponse{}, nil
}

func (s *GRPCServer) DeleteRecord(ctx context.Context, req *wire.DeleteRecordRequest) (*wire.DeleteRecordResponse, error) {
	sess, _ := sessions.FromContext(ctx)

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.records.Delete(ctx, sess, req.Name)
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.DeleteRecordResponse{}, nil
}

func (s *GRPCServer) ListRecords(ctx context.Context, _ *wire.ListRecordsRequest) (*wire.ListRecordsResponse, error) {
	sess, _ := sessions.FromContext(ctx)

	var names []string
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		names, err = s.records.List(ctx, sess)
		return err
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &wire.ListRecordsResponse{Names: names}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *wire.PingRequest) (*wire.PingResponse, error) {
	return &wire.PingResponse{Status: "OK"}, nil
}
