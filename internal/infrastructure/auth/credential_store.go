package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rental/backoffice/internal/domain/session"
)

const credentialKeyPrefix = "backoffice:session:"

// storedCredentials is the serialized form; the token is sealed
type storedCredentials struct {
	SealedToken string        `json:"token"`
	User        *session.User `json:"user,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func seal(sealer Sealer, creds *session.Credentials) (storedCredentials, error) {
	token, err := sealer.Seal(creds.Token)
	if err != nil {
		return storedCredentials{}, err
	}
	return storedCredentials{SealedToken: token, User: creds.User, UpdatedAt: creds.UpdatedAt}, nil
}

func unseal(sealer Sealer, sc storedCredentials) (*session.Credentials, error) {
	token, err := sealer.Open(sc.SealedToken)
	if err != nil {
		return nil, err
	}
	return &session.Credentials{Token: token, User: sc.User, UpdatedAt: sc.UpdatedAt}, nil
}

// RedisCredentialStore implements session.CredentialStore using Redis so
// that sessions survive restarts and are shared by every instance
type RedisCredentialStore struct {
	client    redis.Cmdable
	sealer    Sealer
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCredentialStore creates a store on an existing client. Entries
// expire after ttl, matching the session cookie lifetime.
func NewRedisCredentialStore(client redis.Cmdable, sealer Sealer, ttl time.Duration) *RedisCredentialStore {
	return &RedisCredentialStore{
		client:    client,
		sealer:    sealer,
		keyPrefix: credentialKeyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisCredentialStore) key(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

// Load returns the stored credentials or session.ErrNoCredentials
func (s *RedisCredentialStore) Load(ctx context.Context, id uuid.UUID) (*session.Credentials, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session credentials: %w", err)
	}

	var sc storedCredentials
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to decode session credentials: %w", err)
	}
	return unseal(s.sealer, sc)
}

// Save seals and stores credentials, refreshing the expiry
func (s *RedisCredentialStore) Save(ctx context.Context, id uuid.UUID, creds *session.Credentials) error {
	sc, err := seal(s.sealer, creds)
	if err != nil {
		return fmt.Errorf("failed to seal session token: %w", err)
	}
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode session credentials: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session credentials: %w", err)
	}
	return nil
}

// Clear deletes the entry. A missing key is not an error.
func (s *RedisCredentialStore) Clear(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear session credentials: %w", err)
	}
	return nil
}

var _ session.CredentialStore = (*RedisCredentialStore)(nil)

// InMemoryCredentialStore keeps credentials in the process.
// WARNING: sessions are lost on restart and not shared between instances.
type InMemoryCredentialStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	creds     session.Credentials
	expiresAt time.Time
}

// NewInMemoryCredentialStore creates an in-memory store; ttl <= 0 disables expiry
func NewInMemoryCredentialStore(ttl time.Duration) *InMemoryCredentialStore {
	return &InMemoryCredentialStore{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load returns a copy of the stored credentials or session.ErrNoCredentials
func (s *InMemoryCredentialStore) Load(_ context.Context, id uuid.UUID) (*session.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, session.ErrNoCredentials
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, session.ErrNoCredentials
	}
	creds := e.creds
	if creds.User != nil {
		u := *creds.User
		creds.User = &u
	}
	return &creds, nil
}

// Save stores a copy of creds
func (s *InMemoryCredentialStore) Save(_ context.Context, id uuid.UUID, creds *session.Credentials) error {
	if creds == nil {
		return nil
	}
	e := memoryEntry{creds: *creds}
	if creds.User != nil {
		u := *creds.User
		e.creds.User = &u
	}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = e
	return nil
}

// Clear deletes the entry
func (s *InMemoryCredentialStore) Clear(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (s *InMemoryCredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ session.CredentialStore = (*InMemoryCredentialStore)(nil)
