package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	appquotation "github.com/rental/backoffice/internal/application/quotation"
	"github.com/rental/backoffice/internal/domain/quotation"
)

// ArchiveURLHeader carries the presigned download link of an archived export
const ArchiveURLHeader = "X-Archive-URL"

// QuotationHandler handles saved quotation endpoints
type QuotationHandler struct {
	BaseHandler
	quotations *appquotation.Service
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(service *appquotation.Service) *QuotationHandler {
	return &QuotationHandler{quotations: service}
}

// StatusRequest is the target status of a status change
type StatusRequest struct {
	Status quotation.Status `json:"status" binding:"required"`
}

// List handles GET /quotations
func (h *QuotationHandler) List(c *gin.Context) {
	var filter quotation.Filter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.quotations.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Meta)
}

// Get handles GET /quotations/:id
func (h *QuotationHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	q, err := h.quotations.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Delete handles DELETE /quotations/:id
func (h *QuotationHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.quotations.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateStatus handles PUT /quotations/:id/status
func (h *QuotationHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q, err := h.quotations.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// ExportPDF handles GET /quotations/:id/export/pdf
func (h *QuotationHandler) ExportPDF(c *gin.Context) {
	h.export(c, quotation.ExportPDF)
}

// ExportExcel handles GET /quotations/:id/export/excel
func (h *QuotationHandler) ExportExcel(c *gin.Context) {
	h.export(c, quotation.ExportExcel)
}

func (h *QuotationHandler) export(c *gin.Context, format quotation.ExportFormat) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.quotations.Export(c.Request.Context(), id, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	doc := result.Document
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	if result.ArchiveURL != "" {
		c.Header(ArchiveURLHeader, result.ArchiveURL)
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
