package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/session"
	"github.com/rental/backoffice/internal/infrastructure/auth"
	"github.com/rental/backoffice/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSealKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setupCredentialStoreTest(t *testing.T) (*GormCredentialStore, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.SessionCredentialModel{}))

	sealer, err := auth.NewSecretboxSealer(testSealKey)
	require.NoError(t, err)
	return NewGormCredentialStore(db, sealer, time.Hour), db
}

func testCredentials() *session.Credentials {
	return &session.Credentials{
		Token: "bearer-token",
		User:  &session.User{ID: 4, Username: "budi", FirstName: "Budi", Role: "admin", IsActive: true},
	}
}

func TestGormCredentialStore_SaveLoadClear(t *testing.T) {
	store, db := setupCredentialStoreTest(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.Load(ctx, id)
	assert.ErrorIs(t, err, session.ErrNoCredentials)

	require.NoError(t, store.Save(ctx, id, testCredentials()))

	var row models.SessionCredentialModel
	require.NoError(t, db.First(&row, "session_id = ?", id.String()).Error)
	assert.NotContains(t, row.SealedToken, "bearer-token", "tokens are sealed at rest")
	assert.Contains(t, row.UserProfile, `"username":"budi"`)

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, int64(4), got.User.ID)

	require.NoError(t, store.Clear(ctx, id))
	require.NoError(t, store.Clear(ctx, id))
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, session.ErrNoCredentials)
}

func TestGormCredentialStore_SaveReplaces(t *testing.T) {
	store, db := setupCredentialStoreTest(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.Save(ctx, id, testCredentials()))
	require.NoError(t, store.Save(ctx, id, &session.Credentials{Token: "rotated"}))

	var count int64
	require.NoError(t, db.Model(&models.SessionCredentialModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Token)
	assert.Nil(t, got.User)
}

func TestGormCredentialStore_Expiry(t *testing.T) {
	store, _ := setupCredentialStoreTest(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	expired, fresh := uuid.New(), uuid.New()
	require.NoError(t, store.Save(ctx, expired, testCredentials()))
	now = now.Add(30 * time.Minute)
	require.NoError(t, store.Save(ctx, fresh, testCredentials()))
	now = now.Add(45 * time.Minute)

	_, err := store.Load(ctx, expired)
	assert.ErrorIs(t, err, session.ErrNoCredentials)

	_, err = store.Load(ctx, fresh)
	assert.NoError(t, err)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestGormCredentialStore_WrongSealKey(t *testing.T) {
	store, db := setupCredentialStoreTest(t)
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, store.Save(ctx, id, testCredentials()))

	other, err := auth.NewSecretboxSealer("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	_, err = NewGormCredentialStore(db, other, time.Hour).Load(ctx, id)
	assert.ErrorIs(t, err, auth.ErrSealedValue)
}

// ==================== sqlmock ====================

func newMockCredentialStore(t *testing.T) (*GormCredentialStore, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCredentialStore(gormDB, auth.NewPlainSealer(), time.Hour), mock, mockDB
}

func TestGormCredentialStore_Clear_SQL(t *testing.T) {
	store, mock, mockDB := newMockCredentialStore(t)
	defer mockDB.Close()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM "session_credentials" WHERE session_id = \$1`).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Clear(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCredentialStore_Load_DatabaseError(t *testing.T) {
	store, mock, mockDB := newMockCredentialStore(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "session_credentials" WHERE session_id = \$1 AND expires_at > \$2`).
		WillReturnError(errors.New("connection reset"))

	_, err := store.Load(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNoCredentials)
	assert.Contains(t, err.Error(), "failed to load session credentials")
}

func TestGormCredentialStore_Save_Upsert_SQL(t *testing.T) {
	store, mock, mockDB := newMockCredentialStore(t)
	defer mockDB.Close()

	mock.ExpectExec(`INSERT INTO "session_credentials" .* ON CONFLICT \("session_id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), uuid.New(), testCredentials()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
