// Package sessions tracks authenticated sessions. A session belongs to one
// connection, carries the user's record key and is never persisted.
package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/cryptox"
)

// ConnID identifies one client connection for the lifetime of the process.
type ConnID uint64

// Session is the server side of a login. The key is reachable only through
// WithKey and is wiped when the session ends.
type Session struct {
	ID        string
	UserID    string
	UserName  string
	Conn      ConnID
	ExpiresAt time.Time

	mu    sync.RWMutex
	key   *cryptox.Key
	ended bool
}

// WithKey runs fn with the record key. It returns common.ErrUnauthorized if
// the session already ended; the session cannot end while fn runs.
func (s *Session) WithKey(fn func(key *cryptox.Key) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ended || s.key == nil || s.key.Wiped() {
		return common.ErrUnauthorized
	}
	return fn(s.key)
}

// Ended reports whether the session was closed, revoked or expired.
func (s *Session) Ended() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ended
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.ended = true
	if s.key != nil {
		s.key.Wipe()
	}
}

type sessionCtxKey struct{}
type connCtxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return s, ok && s != nil
}

// WithConn returns a copy of ctx tagged with the connection ID.
func WithConn(ctx context.Context, id ConnID) context.Context {
	return context.WithValue(ctx, connCtxKey{}, id)
}

// ConnFromContext returns the connection ID set by WithConn.
func ConnFromContext(ctx context.Context) (ConnID, bool) {
	id, ok := ctx.Value(connCtxKey{}).(ConnID)
	return id, ok
}
