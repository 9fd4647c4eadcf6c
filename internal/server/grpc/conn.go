package grpc

import (
	"context"
	"sync/atomic"

	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"google.golang.org/grpc/stats"
)

// connTracker numbers transport connections and ends the session of a
// connection when it closes.
type connTracker struct {
	next     atomic.Uint64
	sessions *sessions.Manager
}

func newConnTracker(sm *sessions.Manager) *connTracker {
	return &connTracker{sessions: sm}
}

func (t *connTracker) TagConn(ctx context.Context, _ *stats.ConnTagInfo) context.Context {
	return sessions.WithConn(ctx, sessions.ConnID(t.next.Add(1)))
}

func (t *connTracker) HandleConn(ctx context.Context, s stats.ConnStats) {
	if _, ok := s.(*stats.ConnEnd); !ok {
		return
	}
	if id, ok := sessions.ConnFromContext(ctx); ok {
		t.sessions.EndConn(ctx, id)
	}
}

func (t *connTracker) TagRPC(ctx context.Context, _ *stats.RPCTagInfo) context.Context {
	return ctx
}

func (t *connTracker) HandleRPC(context.Context, stats.RPCStats) {}
