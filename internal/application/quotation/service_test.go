package quotation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Status Tests
// ============================================================================

func TestService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		current quotation.Status
		target  quotation.Status
		allowed bool
	}{
		{"draft to sent", quotation.StatusDraft, quotation.StatusSent, true},
		{"sent to approved", quotation.StatusSent, quotation.StatusApproved, true},
		{"approved to invoice", quotation.StatusApproved, quotation.StatusConvertedToInvoice, true},
		{"draft to approved", quotation.StatusDraft, quotation.StatusApproved, false},
		{"rejected is terminal", quotation.StatusRejected, quotation.StatusDraft, false},
		{"converted is terminal", quotation.StatusConvertedToDO, quotation.StatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, nil, nil)
			repo.On("Get", mock.Anything, int64(5)).Return(&quotation.Quotation{ID: 5, Status: tt.current}, nil)
			if tt.allowed {
				repo.On("UpdateStatus", mock.Anything, int64(5), tt.target).
					Return(&quotation.Quotation{ID: 5, Status: tt.target}, nil)
			}

			q, err := svc.UpdateStatus(context.Background(), 5, tt.target)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.target, q.Status)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_UpdateStatus_UnknownStatus(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), 5, quotation.Status("archived"))
	require.Error(t, err)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_List_RejectsUnknownStatus(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil)

	_, err := svc.List(context.Background(), quotation.Filter{Status: "pending"})
	require.Error(t, err)

	page := &shared.Page[quotation.Quotation]{Meta: shared.NewPageMeta(0, 1, 10)}
	repo.On("List", mock.Anything, quotation.Filter{Status: quotation.StatusSent}).Return(page, nil)
	got, err := svc.List(context.Background(), quotation.Filter{Status: quotation.StatusSent})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Meta.TotalPages)
}

// ============================================================================
// Export Tests
// ============================================================================

func TestService_Export_WithoutArchive(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil)
	repo.On("Export", mock.Anything, int64(5), quotation.ExportPDF).
		Return(&quotation.Document{QuotationID: 5, Format: quotation.ExportPDF, Content: []byte("%PDF")}, nil)

	res, err := svc.Export(context.Background(), 5, quotation.ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "quotation-5.pdf", res.Document.Filename)
	assert.Equal(t, "application/pdf", res.Document.ContentType)
	assert.Empty(t, res.ArchiveKey)
}

func TestService_Export_Archives(t *testing.T) {
	repo := new(MockRepository)
	archive := new(MockArchive)
	svc := NewService(repo, archive, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC) }

	doc := &quotation.Document{QuotationID: 5, Format: quotation.ExportExcel, Filename: "Q-20240305-0042.xlsx", Content: []byte("xlsx")}
	repo.On("Export", mock.Anything, int64(5), quotation.ExportExcel).Return(doc, nil)
	key := "quotations/5/20240305T103000Z-Q-20240305-0042.xlsx"
	archive.On("PutObject", mock.Anything, key, quotation.ExportExcel.ContentType(), []byte("xlsx")).Return(nil)
	archive.On("GenerateDownloadURL", mock.Anything, key, 15*time.Minute).
		Return("https://archive.local/"+key, time.Now(), nil)

	res, err := svc.Export(context.Background(), 5, quotation.ExportExcel)
	require.NoError(t, err)
	assert.Equal(t, key, res.ArchiveKey)
	assert.Contains(t, res.ArchiveURL, key)
	archive.AssertExpectations(t)
}

func TestService_Export_ArchiveFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	archive := new(MockArchive)
	svc := NewService(repo, archive, nil)
	repo.On("Export", mock.Anything, int64(5), quotation.ExportPDF).
		Return(&quotation.Document{Content: []byte("%PDF")}, nil)
	archive.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket missing"))

	res, err := svc.Export(context.Background(), 5, quotation.ExportPDF)
	require.NoError(t, err)
	assert.Empty(t, res.ArchiveKey)
	assert.Equal(t, []byte("%PDF"), res.Document.Content)
}

func TestService_Export_InvalidFormat(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil)

	_, err := svc.Export(context.Background(), 5, quotation.ExportFormat("docx"))
	require.Error(t, err)
	repo.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
}
