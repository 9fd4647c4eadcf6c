package grpc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/records"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(Options{Address: "127.0.0.1:0"}, logging.Nop{}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "Run returned error on graceful stop")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(Options{Address: "127.0.0.1:99999"}, logging.Nop{}, nil, nil, nil)
	require.Error(t, srv.Run(context.Background()))
}

func TestNewServer_MissingTLSFiles(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(Options{TLSCertFile: "/nonexistent/cert.pem", TLSKeyFile: "/nonexistent/key.pem"}, logging.Nop{}, nil, nil, nil)
	_, err := srv.NewServer()
	require.Error(t, err)
}

func TestEndToEnd_BobScenario(t *testing.T) {
	h := newHarness(t, nil)
	c, _ := h.dial(t)
	ctx := context.Background()

	_, err := c.Register(ctx, &wire.RegisterRequest{UserName: "bob", Password: []byte("pw1")})
	require.NoError(t, err)

	login, err := c.Login(ctx, &wire.LoginRequest{UserName: "bob", Password: []byte("pw1")})
	require.NoError(t, err)
	authed := withToken(ctx, login.Token)

	_, err = c.NewRecord(authed, &wire.NewRecordRequest{Name: "email", Payload: []byte("secret123")})
	require.NoError(t, err)

	list, err := c.ListRecords(authed, &wire.ListRecordsRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, list.Names)

	read, err := c.ReadRecord(authed, &wire.ReadRecordRequest{Name: "email"})
	require.NoError(t, err)
	assert.Equal(t, []byte("secret123"), read.Payload)

	_, err = c.Logout(authed, &wire.LogoutRequest{})
	require.NoError(t, err)

	_, err = c.ReadRecord(authed, &wire.ReadRecordRequest{Name: "email"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))

	_, err = c.ReadRecord(ctx, &wire.ReadRecordRequest{Name: "email"})
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))
}

func TestEndToEnd_ErrorReasons(t *testing.T) {
	h := newHarness(t, nil)
	c, _ := h.dial(t)
	ctx := context.Background()

	_, err := c.Register(ctx, &wire.RegisterRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)

	_, err = c.Register(ctx, &wire.RegisterRequest{UserName: "alice", Password: []byte("p2")})
	assert.Equal(t, wire.ReasonAlreadyExists, reasonOf(t, err))

	_, err = c.Register(ctx, &wire.RegisterRequest{UserName: "no spaces", Password: []byte("p")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, wrongPw := c.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("nope")})
	_, unknown := c.Login(ctx, &wire.LoginRequest{UserName: "mallory", Password: []byte("p1")})
	assert.Equal(t, wire.ReasonInvalidCredentials, reasonOf(t, wrongPw))
	assert.Equal(t, status.Convert(wrongPw).Message(), status.Convert(unknown).Message())
	assert.Equal(t, reasonOf(t, wrongPw), reasonOf(t, unknown))

	login, err := c.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	authed := withToken(ctx, login.Token)

	_, err = c.NewRecord(authed, &wire.NewRecordRequest{Name: "email", Payload: []byte("a")})
	require.NoError(t, err)
	_, err = c.NewRecord(authed, &wire.NewRecordRequest{Name: "email", Payload: []byte("b")})
	assert.Equal(t, wire.ReasonDuplicateName, reasonOf(t, err))

	_, err = c.UpdateRecord(authed, &wire.UpdateRecordRequest{Name: "nope", Payload: []byte("b")})
	assert.Equal(t, wire.ReasonNotFound, reasonOf(t, err))

	_, err = c.DeleteRecord(authed, &wire.DeleteRecordRequest{Name: "email"})
	require.NoError(t, err)
	_, err = c.DeleteRecord(authed, &wire.DeleteRecordRequest{Name: "email"})
	assert.Equal(t, wire.ReasonNotFound, reasonOf(t, err))

	_, err = c.NewRecord(authed, &wire.NewRecordRequest{Name: "big", Payload: make([]byte, 5000)})
	assert.Equal(t, wire.ReasonInvalidArgument, reasonOf(t, err))
}

func TestEndToEnd_DecryptErrorOnTamper(t *testing.T) {
	h := newHarness(t, nil)
	c, _ := h.dial(t)
	ctx := context.Background()

	_, err := c.Register(ctx, &wire.RegisterRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	login, err := c.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	authed := withToken(ctx, login.Token)

	_, err = c.NewRecord(authed, &wire.NewRecordRequest{Name: "email", Payload: []byte("secret")})
	require.NoError(t, err)

	rec, err := h.repos.Records().Get(ctx, login.UserID, "email")
	require.NoError(t, err)
	rec.Ciphertext[0] ^= 0x01
	require.NoError(t, h.repos.Records().Update(ctx, rec))

	_, err = c.ReadRecord(authed, &wire.ReadRecordRequest{Name: "email"})
	assert.Equal(t, codes.DataLoss, status.Code(err))
	assert.Equal(t, wire.ReasonDecryptError, reasonOf(t, err))
}

func TestEndToEnd_UnauthorizedCausesNoStateChange(t *testing.T) {
	h := newHarness(t, nil)
	c, _ := h.dial(t)
	ctx := context.Background()

	_, err := c.NewRecord(ctx, &wire.NewRecordRequest{Name: "x", Payload: []byte("y")})
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))
	_, err = c.ClearData(ctx, &wire.ClearDataRequest{Password: []byte("p")})
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))
	_, err = c.Logout(ctx, &wire.LogoutRequest{})
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))

	users, err := h.repos.Users().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 0, h.sessions.Len())
}

func TestEndToEnd_SessionBoundToConnection(t *testing.T) {
	h := newHarness(t, nil)
	c1, conn1 := h.dial(t)
	c2, _ := h.dial(t)
	ctx := context.Background()

	_, err := c1.Register(ctx, &wire.RegisterRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	login, err := c1.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)

	// a token does not travel to another connection
	_, err = c2.ListRecords(withToken(ctx, login.Token), &wire.ListRecordsRequest{})
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))

	// failed login drops the current session
	_, err = c1.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("wrong")})
	assert.Equal(t, wire.ReasonInvalidCredentials, reasonOf(t, err))
	_, err = c1.ListRecords(withToken(ctx, login.Token), &wire.ListRecordsRequest{})
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))

	// disconnect ends the session
	_, err = c1.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	require.Equal(t, 1, h.sessions.Len())
	require.NoError(t, conn1.Close())
	require.Eventually(t, func() bool { return h.sessions.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEndToEnd_ClearData(t *testing.T) {
	h := newHarness(t, nil)
	c1, _ := h.dial(t)
	c2, _ := h.dial(t)
	ctx := context.Background()

	_, err := c1.Register(ctx, &wire.RegisterRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	l1, err := c1.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	l2, err := c2.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)

	_, err = c1.NewRecord(withToken(ctx, l1.Token), &wire.NewRecordRequest{Name: "email", Payload: []byte("x")})
	require.NoError(t, err)

	_, err = c1.ClearData(withToken(ctx, l1.Token), &wire.ClearDataRequest{Password: []byte("bad")})
	assert.Equal(t, wire.ReasonInvalidCredentials, reasonOf(t, err))

	_, err = c1.ClearData(withToken(ctx, l1.Token), &wire.ClearDataRequest{Password: []byte("p1")})
	require.NoError(t, err)

	_, err = c2.ListRecords(withToken(ctx, l2.Token), &wire.ListRecordsRequest{})
	assert.Equal(t, wire.ReasonUnauthorized, reasonOf(t, err))

	_, err = c1.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	assert.Equal(t, wire.ReasonInvalidCredentials, reasonOf(t, err))
}

// flakyRecords fails the first Create with a storage error.
type flakyRecords struct {
	records.Repository
	failures atomic.Int32
	calls    atomic.Int32
}

func (f *flakyRecords) Create(ctx context.Context, rec *models.Record) error {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return fmt.Errorf("%w: connection reset", common.ErrStorage)
	}
	return f.Repository.Create(ctx, rec)
}

func TestEndToEnd_StorageRetry(t *testing.T) {
	flaky := &flakyRecords{}
	h := newHarness(t, func(r records.Repository) records.Repository {
		flaky.Repository = r
		return flaky
	})
	c, _ := h.dial(t)
	ctx := context.Background()

	_, err := c.Register(ctx, &wire.RegisterRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	login, err := c.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("p1")})
	require.NoError(t, err)
	authed := withToken(ctx, login.Token)

	flaky.failures.Store(1)
	_, err = c.NewRecord(authed, &wire.NewRecordRequest{Name: "once", Payload: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, int32(2), flaky.calls.Load())

	flaky.calls.Store(0)
	flaky.failures.Store(2)
	_, err = c.NewRecord(authed, &wire.NewRecordRequest{Name: "twice", Payload: []byte("x")})
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, wire.ReasonStorageError, reasonOf(t, err))
	assert.Equal(t, int32(2), flaky.calls.Load())
}

func TestPing(t *testing.T) {
	h := newHarness(t, nil)
	c, _ := h.dial(t)

	resp, err := c.Ping(context.Background(), &wire.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
}

// stallingRecords blocks Get until release is closed.
type stallingRecords struct {
	records.Repository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stallingRecords) Get(ctx context.Context, userID, name string) (*models.Record, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.Repository.Get(ctx, userID, name)
}

func TestEndToEnd_LogoutDuringSlowReadDoesNotBlockOtherUsers(t *testing.T) {
	stall := &stallingRecords{entered: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, func(r records.Repository) records.Repository {
		stall.Repository = r
		return stall
	})
	alice, _ := h.dial(t)
	bob, _ := h.dial(t)
	ctx := context.Background()

	for _, c := range []struct {
		client *wire.VaultClient
		name   string
	}{{alice, "alice"}, {bob, "bob"}} {
		_, err := c.client.Register(ctx, &wire.RegisterRequest{UserName: c.name, Password: []byte("pw")})
		require.NoError(t, err)
	}
	la, err := alice.Login(ctx, &wire.LoginRequest{UserName: "alice", Password: []byte("pw")})
	require.NoError(t, err)
	lb, err := bob.Login(ctx, &wire.LoginRequest{UserName: "bob", Password: []byte("pw")})
	require.NoError(t, err)
	aliceCtx, bobCtx := withToken(ctx, la.Token), withToken(ctx, lb.Token)

	_, err = alice.NewRecord(aliceCtx, &wire.NewRecordRequest{Name: "email", Payload: []byte("x")})
	require.NoError(t, err)

	readDone := make(chan error, 1)
	go func() {
		_, err := alice.ReadRecord(aliceCtx, &wire.ReadRecordRequest{Name: "email"})
		readDone <- err
	}()
	<-stall.entered

	logoutDone := make(chan error, 1)
	go func() {
		_, err := alice.Logout(aliceCtx, &wire.LogoutRequest{})
		logoutDone <- err
	}()
	require.Eventually(t, func() bool { return h.sessions.Len() == 1 }, time.Second, 5*time.Millisecond)

	listCtx, cancel := context.WithTimeout(bobCtx, time.Second)
	defer cancel()
	names, err := bob.ListRecords(listCtx, &wire.ListRecordsRequest{})
	require.NoError(t, err, "other users must not wait for a pending logout")
	assert.Empty(t, names.Names)

	close(stall.release)
	require.NoError(t, <-readDone)
	require.NoError(t, <-logoutDone)
}
