package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/cryptox"
	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/records"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rpass/internal/server/services"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/dmitrijs2005/rpass/internal/syncx"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

type harness struct {
	server   *GRPCServer
	sessions *sessions.Manager
	repos    *repomanager.MemoryRepositoryManager
	lis      *bufconn.Listener
}

// newHarness serves a fully wired server over an in-memory listener. wrap,
// when set, decorates the record repository.
func newHarness(t *testing.T, wrap func(records.Repository) records.Repository) *harness {
	t.Helper()

	repos := repomanager.NewMemoryRepositoryManager()
	var recRepo records.Repository = repos.Records()
	if wrap != nil {
		recRepo = wrap(recRepo)
	}

	locks := syncx.NewKeyedMutex()
	sm := sessions.NewManager([]byte("test-secret"), time.Minute, logging.Nop{})
	vault := cryptox.NewVault(cryptox.Params{Time: 1, Memory: 1024, Threads: 1})
	us := services.NewUserService(repos.Users(), vault, locks, sm, 4, logging.Nop{})
	rs := services.NewRecordService(recRepo, locks, 4096, logging.Nop{})

	srv := NewGRPCServer(Options{RetryBackoff: time.Millisecond, MaxMessageBytes: 1 << 20}, logging.Nop{}, us, rs, sm)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &harness{server: srv, sessions: sm, repos: repos, lis: lis}
}

// dial opens a new client connection; each one is a separate session scope.
func (h *harness) dial(t *testing.T) (*wire.VaultClient, *grpc.ClientConn) {
	t.Helper()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return h.lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return wire.NewVaultClient(conn), conn
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.SessionTokenHeaderName, token)
}
