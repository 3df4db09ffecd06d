package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/session"
	"github.com/rental/backoffice/internal/infrastructure/auth"
	"github.com/rental/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCredentialStore implements session.CredentialStore on the
// session_credentials table
type GormCredentialStore struct {
	db     *gorm.DB
	sealer auth.Sealer
	ttl    time.Duration
	now    func() time.Time
}

// NewGormCredentialStore creates a store. Rows expire ttl after their last save.
func NewGormCredentialStore(db *gorm.DB, sealer auth.Sealer, ttl time.Duration) *GormCredentialStore {
	return &GormCredentialStore{
		db:     db,
		sealer: sealer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the stored credentials or session.ErrNoCredentials
func (s *GormCredentialStore) Load(ctx context.Context, id uuid.UUID) (*session.Credentials, error) {
	var m models.SessionCredentialModel
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND expires_at > ?", id.String(), s.now()).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session credentials: %w", err)
	}

	token, err := s.sealer.Open(m.SealedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open session token: %w", err)
	}
	return m.ToDomain(token)
}

// Save inserts or replaces the row for id
func (s *GormCredentialStore) Save(ctx context.Context, id uuid.UUID, creds *session.Credentials) error {
	sealed, err := s.sealer.Seal(creds.Token)
	if err != nil {
		return fmt.Errorf("failed to seal session token: %w", err)
	}

	now := s.now()
	var m models.SessionCredentialModel
	if err := m.FromDomain(id, sealed, creds, now.Add(s.ttl)); err != nil {
		return err
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sealed_token", "user_profile", "expires_at", "updated_at"}),
		}).
		Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to save session credentials: %w", err)
	}
	return nil
}

// Clear deletes the row for id. Missing rows are not an error.
func (s *GormCredentialStore) Clear(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("session_id = ?", id.String()).
		Delete(&models.SessionCredentialModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear session credentials: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry and returns how many were removed
func (s *GormCredentialStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.SessionCredentialModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired session credentials: %w", result.Error)
	}
	return result.RowsAffected, nil
}

var _ session.CredentialStore = (*GormCredentialStore)(nil)
