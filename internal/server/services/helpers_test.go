package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/rpass/internal/cryptox"
	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/dmitrijs2005/rpass/internal/syncx"
	"github.com/stretchr/testify/require"
)

var testParams = cryptox.Params{Time: 1, Memory: 1024, Threads: 1}

type fixture struct {
	repos    *repomanager.MemoryRepositoryManager
	sessions *sessions.Manager
	users    *UserService
	records  *RecordService
	nextConn sessions.ConnID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repomanager.NewMemoryRepositoryManager()
	locks := syncx.NewKeyedMutex()
	sm := sessions.NewManager([]byte("secret"), time.Minute, logging.Nop{})

	return &fixture{
		repos:    repos,
		sessions: sm,
		users:    NewUserService(repos.Users(), cryptox.NewVault(testParams), locks, sm, 2, logging.Nop{}),
		records:  NewRecordService(repos.Records(), locks, 1024, logging.Nop{}),
	}
}

// login registers (if needed) and logs the user in on a fresh connection.
func (f *fixture) login(t *testing.T, name, password string) *sessions.Session {
	t.Helper()
	ctx := context.Background()

	user, key, err := f.users.Authenticate(ctx, name, []byte(password))
	if err != nil {
		_, err = f.users.Register(ctx, name, []byte(password))
		require.NoError(t, err)
		user, key, err = f.users.Authenticate(ctx, name, []byte(password))
		require.NoError(t, err)
	}

	f.nextConn++
	tok, err := f.sessions.Open(ctx, f.nextConn, user, key)
	require.NoError(t, err)
	s, err := f.sessions.Resolve(f.nextConn, tok)
	require.NoError(t, err)
	return s
}
