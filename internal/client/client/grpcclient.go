package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Client is the vault API as seen by rpass tools.
type Client interface {
	Register(ctx context.Context, userName string, password []byte) (string, error)
	Login(ctx context.Context, userName string, password []byte) error
	Logout(ctx context.Context) error
	ClearData(ctx context.Context, password []byte) error
	NewRecord(ctx context.Context, name string, payload []byte) error
	ReadRecord(ctx context.Context, name string) ([]byte, error)
	UpdateRecord(ctx context.Context, name string, payload []byte) error
	DeleteRecord(ctx context.Context, name string) error
	ListRecords(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *wire.VaultClient

	mu     sync.RWMutex
	token  string
	userID string
}

var _ Client = (*GRPCClient)(nil)

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withSessionToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewRPassClient connects to endpointURL. Without dial options the channel
// is plaintext; pass grpc.WithTransportCredentials to use TLS.
func NewRPassClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	dialOpts = append(dialOpts, opts...)
	dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(s.sessionTokenInterceptor))

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = wire.NewVaultClient(conn)
	return nil
}

// Token returns the current session token, or "" when logged out.
func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the ID of the logged-in user, or "".
func (s *GRPCClient) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *GRPCClient) setSession(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
}

func (s *GRPCClient) Register(ctx context.Context, userName string, password []byte) (string, error) {
	resp, err := s.client.Register(ctx, &wire.RegisterRequest{UserName: userName, Password: password})
	if err != nil {
		return "", mapError(err)
	}
	return resp.UserID, nil
}

// Login opens a session. The server drops any previous session of this
// connection first, so the stored token is cleared even when Login fails.
func (s *GRPCClient) Login(ctx context.Context, userName string, password []byte) error {
	s.setSession("", "")

	resp, err := s.client.Login(ctx, &wire.LoginRequest{UserName: userName, Password: password})
	if err != nil {
		return mapError(err)
	}

	s.setSession(resp.Token, resp.UserID)
	return nil
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	_, err := s.client.Logout(ctx, &wire.LogoutRequest{})
	s.setSession("", "")
	return mapError(err)
}

// ClearData deletes the account and all of its records. On success every
// session of the user, this one included, is gone.
func (s *GRPCClient) ClearData(ctx context.Context, password []byte) error {
	if _, err := s.client.ClearData(ctx, &wire.ClearDataRequest{Password: password}); err != nil {
		return mapError(err)
	}
	s.setSession("", "")
	return nil
}

func (s *GRPCClient) NewRecord(ctx context.Context, name string, payload []byte) error {
	_, err := s.client.NewRecord(ctx, &wire.NewRecordRequest{Name: name, Payload: payload})
	return mapError(err)
}

func (s *GRPCClient) ReadRecord(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.ReadRecord(ctx, &wire.ReadRecordRequest{Name: name})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Payload, nil
}

func (s *GRPCClient) UpdateRecord(ctx context.Context, name string, payload []byte) error {
	_, err := s.client.UpdateRecord(ctx, &wire.UpdateRecordRequest{Name: name, Payload: payload})
	return mapError(err)
}

func (s *GRPCClient) DeleteRecord(ctx context.Context, name string) error {
	_, err := s.client.DeleteRecord(ctx, &wire.DeleteRecordRequest{Name: name})
	return mapError(err)
}

// ListRecords returns the record names in byte-wise order. The result is
// never nil.
func (s *GRPCClient) ListRecords(ctx context.Context) ([]string, error) {
	resp, err := s.client.ListRecords(ctx, &wire.ListRecordsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	if resp.Names == nil {
		return []string{}, nil
	}
	return resp.Names, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &wire.PingRequest{})
	if err != nil {
		return mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}
