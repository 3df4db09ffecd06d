package quotation

import (
	"context"
	"time"

	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of quotation.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, filter quotation.Filter) (*shared.Page[quotation.Quotation], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Page[quotation.Quotation]), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id int64) (*quotation.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, sub quotation.Submission) (*quotation.Quotation, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, sub quotation.Submission) (*quotation.Quotation, error) {
	args := m.Called(ctx, id, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id int64, status quotation.Status) (*quotation.Quotation, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockRepository) Export(ctx context.Context, id int64, format quotation.ExportFormat) (*quotation.Document, error) {
	args := m.Called(ctx, id, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Document), args.Error(1)
}

// MockLookup is a mock implementation of EquipmentLookup
type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) LookupEquipment(ctx context.Context, id int64) (*quotation.EquipmentSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.EquipmentSnapshot), args.Error(1)
}

// MockArchive is a mock implementation of ArchiveStorage
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockArchive) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
