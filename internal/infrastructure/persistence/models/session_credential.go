package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/session"
)

// SessionCredentialModel is one row of session_credentials. The bearer
// token is stored sealed; the user profile is stored as JSON.
type SessionCredentialModel struct {
	SessionID   string    `gorm:"type:varchar(36);primaryKey"`
	SealedToken string    `gorm:"type:text;not null"`
	UserProfile string    `gorm:"type:text"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SessionCredentialModel) TableName() string {
	return "session_credentials"
}

// FromDomain populates the model; sealedToken must already be sealed
func (m *SessionCredentialModel) FromDomain(id uuid.UUID, sealedToken string, creds *session.Credentials, expiresAt time.Time) error {
	m.SessionID = id.String()
	m.SealedToken = sealedToken
	m.ExpiresAt = expiresAt
	m.UserProfile = ""
	if creds.User != nil {
		data, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("failed to encode user profile: %w", err)
		}
		m.UserProfile = string(data)
	}
	return nil
}

// ToDomain converts the row back, with token being the opened bearer token
func (m *SessionCredentialModel) ToDomain(token string) (*session.Credentials, error) {
	creds := &session.Credentials{Token: token, UpdatedAt: m.UpdatedAt}
	if m.UserProfile != "" {
		var u session.User
		if err := json.Unmarshal([]byte(m.UserProfile), &u); err != nil {
			return nil, fmt.Errorf("failed to decode user profile: %w", err)
		}
		creds.User = &u
	}
	return creds, nil
}
