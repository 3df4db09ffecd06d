package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/infrastructure/config"
)

const sessionIssuer = "rental-backoffice"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid session token")
	ErrExpiredToken     = errors.New("session token has expired")
	ErrTokenNotYetValid = errors.New("session token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid session token claims")
	ErrMissingSecret    = errors.New("session secret is required")
)

// SessionClaims are the claims carried by the session cookie. The cookie
// only identifies the client session; the backend bearer token never
// leaves the server.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// SessionTokenService signs and verifies session cookies
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewSessionTokenService creates a service from the session configuration
func NewSessionTokenService(cfg config.SessionConfig) (*SessionTokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &SessionTokenService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: sessionIssuer,
		now:    time.Now,
	}, nil
}

// Issue signs a cookie value for sessionID and returns it with its expiry
func (s *SessionTokenService) Issue(sessionID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		SessionID: sessionID.String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies a cookie value and returns the session id it carries
func (s *SessionTokenService) Parse(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return uuid.Nil, ErrTokenNotYetValid
		}
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidClaims
	}

	id, err := uuid.Parse(claims.SessionID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return id, nil
}

// TTL returns the cookie lifetime
func (s *SessionTokenService) TTL() time.Duration {
	return s.ttl
}
