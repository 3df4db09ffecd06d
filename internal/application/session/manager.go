package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	domain "github.com/rental/backoffice/internal/domain/session"
	"go.uber.org/zap"
)

// Manager owns the live client sessions. Each session is created on first
// use and torn down on logout, on an unauthorized backend reply, or after
// it has been idle longer than the configured TTL.
type Manager struct {
	auth   Authenticator
	store  domain.CredentialStore
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	hooks    []func(uuid.UUID)
}

// NewManager creates a session manager
func NewManager(auth Authenticator, store domain.CredentialStore, logger *zap.Logger) *Manager {
	return &Manager{
		auth:     auth,
		store:    store,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// OnReset registers fn to run whenever a session loses its credentials
func (m *Manager) OnReset(fn func(sessionID uuid.UUID)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

func (m *Manager) notifyReset(id uuid.UUID) {
	m.mu.Lock()
	hooks := append([]func(uuid.UUID){}, m.hooks...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
}

// Get returns the session for id, creating an unauthenticated one if needed
func (m *Manager) Get(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = newSession(id, m.auth, m.store, m.logger, m.notifyReset)
		m.sessions[id] = s
	}
	s.touch()
	return s
}

// Remove forgets a session without touching its stored credentials
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// HandleUnauthorized wipes the session carried by ctx. It is installed as
// the backend client's unauthorized hook, so a 401 on any call resets the
// caller's session.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	s := FromContext(ctx)
	if s == nil {
		m.logger.Debug("Unauthorized backend reply outside a session")
		return
	}
	s.Wipe(context.WithoutCancel(ctx))
}

// Sweep drops in-memory sessions idle since before cutoff. Their stored
// credentials remain, so a returning client is restored through Init.
func (m *Manager) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	var stale []uuid.UUID
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.notifyReset(id)
	}
	if len(stale) > 0 {
		m.logger.Debug("Swept idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval until ctx is done
func (m *Manager) StartSweeper(ctx context.Context, interval, idleTTL time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.Sweep(now.Add(-idleTTL))
			}
		}
	}()
}
