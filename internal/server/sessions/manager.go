package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/cryptox"
	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/auth"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/google/uuid"
)

// Manager owns every live session. Each connection holds at most one.
type Manager struct {
	secret []byte
	ttl    time.Duration
	log    logging.Logger
	now    func() time.Time

	mu     sync.Mutex
	byID   map[string]*Session
	byConn map[ConnID]*Session
}

// NewManager creates a manager signing tokens with secret. An empty secret
// is replaced by 32 random bytes.
func NewManager(secret []byte, ttl time.Duration, log logging.Logger) *Manager {
	if len(secret) == 0 {
		secret = common.GenerateRandByteArray(32)
	}
	return &Manager{
		secret: secret,
		ttl:    ttl,
		log:    log.With("module", "sessions"),
		now:    time.Now,
		byID:   make(map[string]*Session),
		byConn: make(map[ConnID]*Session),
	}
}

// Open starts a session for user on conn and returns its token. Any session
// the connection already held is ended first. The manager takes ownership
// of key.
func (m *Manager) Open(ctx context.Context, conn ConnID, user *models.User, key *cryptox.Key) (string, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.UserName,
		Conn:      conn,
		ExpiresAt: now.Add(m.ttl),
		key:       key,
	}

	token, err := auth.GenerateToken(s.ID, s.UserID, m.secret, m.ttl, now)
	if err != nil {
		key.Wipe()
		return "", fmt.Errorf("open session: %w", err)
	}

	m.mu.Lock()
	old, replaced := m.byConn[conn]
	if replaced {
		replaced = m.unlinkLocked(old)
	}
	m.byID[s.ID] = s
	m.byConn[conn] = s
	m.mu.Unlock()

	if replaced {
		old.end()
	}

	m.log.Info(ctx, "session opened", "user_id", s.UserID, "conn", conn)
	return token, nil
}

// Resolve maps a token presented on conn to its live session. A bad
// signature, an expired token, an ended session or a token that belongs to
// another connection all yield common.ErrUnauthorized.
func (m *Manager) Resolve(conn ConnID, token string) (*Session, error) {
	sid, uid, err := auth.ParseToken(token, m.secret)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	m.mu.Lock()
	s, ok := m.byID[sid]
	if !ok || s.UserID != uid || s.Conn != conn {
		m.mu.Unlock()
		return nil, common.ErrUnauthorized
	}
	if !m.now().Before(s.ExpiresAt) {
		expired := m.unlinkLocked(s)
		m.mu.Unlock()
		if expired {
			s.end()
		}
		return nil, common.ErrUnauthorized
	}
	m.mu.Unlock()
	return s, nil
}

// Close ends the session named by token (logout).
func (m *Manager) Close(ctx context.Context, conn ConnID, token string) error {
	s, err := m.Resolve(conn, token)
	if err != nil {
		return err
	}
	m.End(ctx, s)
	return nil
}

// End removes s if it is still registered.
func (m *Manager) End(ctx context.Context, s *Session) {
	m.mu.Lock()
	removed := m.unlinkLocked(s)
	m.mu.Unlock()

	if removed {
		s.end()
		m.log.Info(ctx, "session closed", "user_id", s.UserID, "conn", s.Conn)
	}
}

// EndConn ends whatever session conn holds. Called when the connection
// goes away and before every login attempt on it.
func (m *Manager) EndConn(ctx context.Context, conn ConnID) {
	m.mu.Lock()
	s, ok := m.byConn[conn]
	if ok {
		ok = m.unlinkLocked(s)
	}
	m.mu.Unlock()

	if ok {
		s.end()
		m.log.Info(ctx, "session dropped with connection", "user_id", s.UserID, "conn", conn)
	}
}

// RevokeUser ends every session of userID and returns how many there were.
func (m *Manager) RevokeUser(ctx context.Context, userID string) int {
	var revoked []*Session
	m.mu.Lock()
	for _, s := range m.byID {
		if s.UserID == userID && m.unlinkLocked(s) {
			revoked = append(revoked, s)
		}
	}
	m.mu.Unlock()

	for _, s := range revoked {
		s.end()
	}

	n := len(revoked)
	if n > 0 {
		m.log.Info(ctx, "sessions revoked", "user_id", userID, "count", n)
	}
	return n
}

// Sweep ends sessions expired at now and returns how many.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session
	m.mu.Lock()
	for _, s := range m.byID {
		if !now.Before(s.ExpiresAt) && m.unlinkLocked(s) {
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.end()
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				m.log.Debug(ctx, "expired sessions swept", "count", n)
			}
		}
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// unlinkLocked drops s from the indexes and reports whether it was still
// registered. The caller ends s after releasing m.mu: ending waits for
// in-flight WithKey calls, which may be blocked on storage.
func (m *Manager) unlinkLocked(s *Session) bool {
	cur, ok := m.byID[s.ID]
	if !ok || cur != s {
		return false
	}
	delete(m.byID, s.ID)
	if m.byConn[s.Conn] == s {
		delete(m.byConn, s.Conn)
	}
	return true
}
