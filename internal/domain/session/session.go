// Package session holds the types shared by the session guard and its stores.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/shared"
)

// User is the profile returned by the rental backend
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
}

// DisplayName returns the full name, or the username when no name is set
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// Credentials are what a client session persists between requests:
// the opaque bearer token and the last-known user profile
type Credentials struct {
	Token     string    `json:"token"`
	User      *User     `json:"user,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrNoCredentials is returned by stores when nothing is stored for a session
var ErrNoCredentials = shared.NewDomainError("NO_CREDENTIALS", "No stored credentials for this session")

// CredentialStore persists credentials per client session
type CredentialStore interface {
	// Load returns the stored credentials or ErrNoCredentials
	Load(ctx context.Context, sessionID uuid.UUID) (*Credentials, error)
	Save(ctx context.Context, sessionID uuid.UUID, creds *Credentials) error
	// Clear removes stored credentials; clearing an empty session is not an error
	Clear(ctx context.Context, sessionID uuid.UUID) error
}
