package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appquotation "github.com/rental/backoffice/internal/application/quotation"
	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/rental/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeArchive records stored objects
type fakeArchive struct {
	keys   []string
	putErr error
}

func (a *fakeArchive) PutObject(_ context.Context, key, _ string, _ []byte) error {
	if a.putErr != nil {
		return a.putErr
	}
	a.keys = append(a.keys, key)
	return nil
}

func (a *fakeArchive) GenerateDownloadURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	return "https://archive.example/" + key, time.Now().Add(ttl), nil
}

func newQuotationRouter(repo *MockQuotationRepository, archive appquotation.ArchiveStorage) *gin.Engine {
	h := NewQuotationHandler(appquotation.NewService(repo, archive, zap.NewNop()))
	r := gin.New()
	q := r.Group("/quotations")
	q.GET("", h.List)
	q.GET("/:id", h.Get)
	q.DELETE("/:id", h.Delete)
	q.PUT("/:id/status", h.UpdateStatus)
	q.GET("/:id/export/pdf", h.ExportPDF)
	q.GET("/:id/export/excel", h.ExportExcel)
	return r
}

func TestQuotationHandler_List(t *testing.T) {
	repo := new(MockQuotationRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f quotation.Filter) bool {
		return f.Status == quotation.StatusSent && f.ClientName == "PT Maju"
	})).Return(&shared.Page[quotation.Quotation]{
		Items: []quotation.Quotation{{ID: 1, QuotationNumber: "QUO-1", Status: quotation.StatusSent}},
		Meta:  shared.NewPageMeta(1, 1, 20),
	}, nil)
	r := newQuotationRouter(repo, nil)

	w := doRequest(r, http.MethodGet, "/quotations?status=sent&clientName=PT+Maju", nil, uuid.Nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var items []quotation.Quotation
	resp := decodeData(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), resp.Meta.Total)

	w = doRequest(r, http.MethodGet, "/quotations?status=lost", nil, uuid.Nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuotationHandler_UpdateStatus(t *testing.T) {
	repo := new(MockQuotationRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(&quotation.Quotation{ID: 1, Status: quotation.StatusSent}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(1), quotation.StatusApproved).
		Return(&quotation.Quotation{ID: 1, Status: quotation.StatusApproved}, nil)
	repo.On("Get", mock.Anything, int64(2)).Return(&quotation.Quotation{ID: 2, Status: quotation.StatusRejected}, nil)
	r := newQuotationRouter(repo, nil)

	t.Run("allowed transition", func(t *testing.T) {
		w := doRequest(r, http.MethodPut, "/quotations/1/status", StatusRequest{Status: quotation.StatusApproved}, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var q quotation.Quotation
		decodeData(t, w, &q)
		assert.Equal(t, quotation.StatusApproved, q.Status)
	})

	t.Run("terminal status", func(t *testing.T) {
		w := doRequest(r, http.MethodPut, "/quotations/2/status", StatusRequest{Status: quotation.StatusSent}, uuid.Nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInvalidTransition, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "rejected")
	})

	t.Run("missing status", func(t *testing.T) {
		w := doRequest(r, http.MethodPut, "/quotations/1/status", map[string]string{}, uuid.Nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, int64(2), mock.Anything)
}

func TestQuotationHandler_Delete(t *testing.T) {
	repo := new(MockQuotationRepository)
	repo.On("Delete", mock.Anything, int64(3)).Return(nil)
	repo.On("Delete", mock.Anything, int64(4)).Return(shared.ErrNotFound)
	r := newQuotationRouter(repo, nil)

	assert.Equal(t, http.StatusNoContent, doRequest(r, http.MethodDelete, "/quotations/3", nil, uuid.Nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/quotations/4", nil, uuid.Nil).Code)
}

func TestQuotationHandler_Export(t *testing.T) {
	pdf := []byte("%PDF-1.7 test")

	t.Run("pdf with archive", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("Export", mock.Anything, int64(7), quotation.ExportPDF).Return(&quotation.Document{
			QuotationID: 7, Format: quotation.ExportPDF, Content: pdf,
		}, nil)
		archive := &fakeArchive{}

		w := doRequest(newQuotationRouter(repo, archive), http.MethodGet, "/quotations/7/export/pdf", nil, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pdf, w.Body.Bytes())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=quotation-7.pdf", w.Header().Get("Content-Disposition"))
		require.Len(t, archive.keys, 1)
		assert.Equal(t, "https://archive.example/"+archive.keys[0], w.Header().Get(ArchiveURLHeader))
	})

	t.Run("excel without archive", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("Export", mock.Anything, int64(7), quotation.ExportExcel).Return(&quotation.Document{
			QuotationID: 7, Format: quotation.ExportExcel, Filename: "Quotation QUO-7.xlsx", Content: []byte("xlsx"),
		}, nil)

		w := doRequest(newQuotationRouter(repo, nil), http.MethodGet, "/quotations/7/export/excel", nil, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, quotation.ExportExcel.ContentType(), w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Quotation QUO-7.xlsx"`, w.Header().Get("Content-Disposition"))
		assert.Empty(t, w.Header().Get(ArchiveURLHeader))
	})

	t.Run("archive failure still serves the document", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("Export", mock.Anything, int64(7), quotation.ExportPDF).Return(&quotation.Document{Content: pdf}, nil)

		w := doRequest(newQuotationRouter(repo, &fakeArchive{putErr: errors.New("s3 down")}),
			http.MethodGet, "/quotations/7/export/pdf", nil, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pdf, w.Body.Bytes())
		assert.Empty(t, w.Header().Get(ArchiveURLHeader))
	})

	t.Run("backend rejects", func(t *testing.T) {
		repo := new(MockQuotationRepository)
		repo.On("Export", mock.Anything, int64(8), quotation.ExportPDF).Return(nil, shared.ErrNotFound)

		w := doRequest(newQuotationRouter(repo, nil), http.MethodGet, "/quotations/8/export/pdf", nil, uuid.Nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})
}
