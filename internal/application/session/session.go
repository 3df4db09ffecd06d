package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	domain "github.com/rental/backoffice/internal/domain/session"
	"github.com/rental/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultLoginError is shown when the backend gives no reason for a failed login
const DefaultLoginError = "Invalid username or password"

// LoginResult is what the backend returns for a successful login
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Authenticator is the rental backend's auth API
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*domain.User, error)
}

// State is the externally visible session state
type State struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsLoading       bool         `json:"isLoading"`
	Error           string       `json:"error,omitempty"`
}

// Session tracks one client's authentication. Login is not deduplicated:
// overlapping calls each hit the backend and the last one to finish wins.
type Session struct {
	id     uuid.UUID
	auth   Authenticator
	store  domain.CredentialStore
	logger *zap.Logger
	onWipe func(uuid.UUID)

	mu       sync.RWMutex
	user     *domain.User
	token    string
	loading  bool
	err      string
	lastSeen time.Time
	restored bool
}

func newSession(id uuid.UUID, auth Authenticator, store domain.CredentialStore, logger *zap.Logger, onWipe func(uuid.UUID)) *Session {
	return &Session{
		id:       id,
		auth:     auth,
		store:    store,
		logger:   logger.With(zap.String("session_id", id.String())),
		onWipe:   onWipe,
		lastSeen: time.Now(),
	}
}

// ID returns the client session identifier
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns a snapshot of the session state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	var user *domain.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return State{
		User:            user,
		IsAuthenticated: s.user != nil && s.token != "",
		IsLoading:       s.loading,
		Error:           s.err,
	}
}

// Token returns the bearer token, or "" when unauthenticated
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Init restores the session from stored credentials. A stored token is
// checked against the backend; any failure clears the stored credentials.
func (s *Session) Init(ctx context.Context) State {
	creds, err := s.store.Load(ctx, s.id)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCredentials) {
			s.logger.Warn("Failed to load stored credentials", zap.Error(err))
		}
		return s.reset("")
	}
	if creds.Token == "" {
		return s.reset("")
	}

	s.setLoading(true)
	user, err := s.auth.Me(WithSession(ctx, s), creds.Token)
	if err != nil {
		s.logger.Info("Stored token rejected, clearing credentials", zap.Error(err))
		s.clearStore(ctx)
		return s.reset("")
	}

	if err := s.store.Save(ctx, s.id, &domain.Credentials{Token: creds.Token, User: user, UpdatedAt: time.Now()}); err != nil {
		s.logger.Warn("Failed to refresh stored user", zap.Error(err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = creds.Token
	s.loading = false
	s.err = ""
	return s.stateLocked()
}

// Restore runs Init the first time the session is used by this process,
// so credentials saved before a restart or an idle sweep are picked up.
// Later calls return the current state.
func (s *Session) Restore(ctx context.Context) State {
	s.mu.Lock()
	done := s.restored
	s.restored = true
	s.mu.Unlock()
	if done {
		return s.State()
	}
	return s.Init(ctx)
}

// Login authenticates against the backend. Failures are reported in the
// returned state's Error field and leave the session unauthenticated; a
// previous login is dropped along with its stored credentials and drafts.
func (s *Session) Login(ctx context.Context, username, password string) State {
	s.mu.Lock()
	s.loading = true
	s.restored = true
	s.err = ""
	hadToken := s.token != ""
	s.mu.Unlock()

	result, err := s.auth.Login(ctx, username, password)
	if err == nil && (result == nil || result.Token == "" || result.User == nil) {
		err = shared.NewDomainError("INVALID_LOGIN_RESPONSE", "Login response is missing token or user")
	}
	if err != nil {
		s.logger.Warn("Login failed", zap.String("username", username), zap.Error(err))
		if hadToken {
			s.drop(ctx)
		}
		return s.reset(loginErrorMessage(err))
	}

	creds := &domain.Credentials{Token: result.Token, User: result.User, UpdatedAt: time.Now()}
	if err := s.store.Save(ctx, s.id, creds); err != nil {
		s.logger.Error("Failed to persist credentials", zap.Error(err))
		if hadToken {
			s.drop(ctx)
		}
		return s.reset("Unable to start session, please try again")
	}

	s.logger.Info("User logged in", zap.String("username", result.User.Username), zap.Int64("user_id", result.User.ID))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = result.User
	s.token = result.Token
	s.loading = false
	s.err = ""
	return s.stateLocked()
}

// Logout notifies the backend on a best-effort basis, then always clears
// the local credentials
func (s *Session) Logout(ctx context.Context) State {
	if token := s.Token(); token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			s.logger.Debug("Backend logout failed, clearing session anyway", zap.Error(err))
		}
	}
	s.drop(ctx)
	s.logger.Info("User logged out")
	return s.reset("")
}

// Wipe drops all credentials without contacting the backend. It is the
// response to any unauthorized backend reply.
func (s *Session) Wipe(ctx context.Context) {
	s.drop(ctx)
	s.reset("")
	s.logger.Info("Session wiped after unauthorized response")
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) reset(errMsg string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.loading = false
	s.err = errMsg
	return s.stateLocked()
}

// drop clears the stored credentials and notifies the reset hooks
func (s *Session) drop(ctx context.Context) {
	s.clearStore(ctx)
	if s.onWipe != nil {
		s.onWipe(s.id)
	}
}

func (s *Session) clearStore(ctx context.Context) {
	if err := s.store.Clear(ctx, s.id); err != nil {
		s.logger.Warn("Failed to clear stored credentials", zap.Error(err))
	}
}

func loginErrorMessage(err error) string {
	if de, ok := shared.AsDomainError(err); ok && de.Message != "" {
		switch de.Code {
		case shared.ErrBackendUnavailable.Code, "INVALID_LOGIN_RESPONSE":
			return de.Message
		case shared.ErrBackendRejected.Code, shared.ErrBackendUnauthorized.Code:
			// Backend-provided reason, when it sent one
			if de.Message != shared.ErrBackendRejected.Message && de.Message != shared.ErrBackendUnauthorized.Message {
				return de.Message
			}
		}
	}
	return DefaultLoginError
}

type ctxKey struct{}

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session carried by ctx, if any
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// TokenFromContext returns the bearer token of the session carried by ctx
func TokenFromContext(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Token()
	}
	return ""
}
