package handler

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/rental/backoffice/internal/application/catalog"
	"github.com/rental/backoffice/internal/domain/catalog"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles equipment, category and bundle endpoints
type CatalogHandler struct {
	BaseHandler
	catalog *appcatalog.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *appcatalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: service}
}

// ============================================================================
// Equipment
// ============================================================================

// ListEquipment handles GET /equipment
func (h *CatalogHandler) ListEquipment(c *gin.Context) {
	var filter catalog.EquipmentFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.catalog.ListEquipment(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Meta)
}

// ListEquipmentByCategory handles GET /equipment/category/:categoryId
func (h *CatalogHandler) ListEquipmentByCategory(c *gin.Context) {
	categoryID, ok := h.pathID(c, "categoryId")
	if !ok {
		return
	}
	var filter catalog.EquipmentFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.catalog.ListEquipmentByCategory(c.Request.Context(), categoryID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Meta)
}

// GetEquipment handles GET /equipment/:id
func (h *CatalogHandler) GetEquipment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	eq, err := h.catalog.GetEquipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, eq)
}

// CreateEquipment handles POST /equipment
func (h *CatalogHandler) CreateEquipment(c *gin.Context) {
	var in catalog.EquipmentInput
	if !h.bindJSON(c, &in) {
		return
	}
	eq, err := h.catalog.CreateEquipment(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, eq)
}

// UpdateEquipment handles PUT /equipment/:id
func (h *CatalogHandler) UpdateEquipment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in catalog.EquipmentInput
	if !h.bindJSON(c, &in) {
		return
	}
	eq, err := h.catalog.UpdateEquipment(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, eq)
}

// DeleteEquipment handles DELETE /equipment/:id
func (h *CatalogHandler) DeleteEquipment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteEquipment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ============================================================================
// Categories
// ============================================================================

// ListCategories handles GET /equipment/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var filter catalog.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.catalog.ListCategories(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Meta)
}

// GetCategory handles GET /equipment/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cat, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cat)
}

// CreateCategory handles POST /equipment/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var in catalog.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cat)
}

// UpdateCategory handles PUT /equipment/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in catalog.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cat)
}

// DeleteCategory handles DELETE /equipment/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ============================================================================
// Bundles
// ============================================================================

// ListBundles handles GET /bundles
func (h *CatalogHandler) ListBundles(c *gin.Context) {
	var filter catalog.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.catalog.ListBundles(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Meta)
}

// GetBundle handles GET /bundles/:id
func (h *CatalogHandler) GetBundle(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.catalog.GetBundle(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// CreateBundle handles POST /bundles. The daily price is computed here
// from current equipment prices.
func (h *CatalogHandler) CreateBundle(c *gin.Context) {
	var in catalog.BundleInput
	if !h.bindJSON(c, &in) {
		return
	}
	b, err := h.catalog.CreateBundle(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// UpdateBundle handles PUT /bundles/:id
func (h *CatalogHandler) UpdateBundle(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in catalog.BundleInput
	if !h.bindJSON(c, &in) {
		return
	}
	b, err := h.catalog.UpdateBundle(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// DeleteBundle handles DELETE /bundles/:id
func (h *CatalogHandler) DeleteBundle(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteBundle(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BundlePriceRequest is the body of the bundle price preview
type BundlePriceRequest struct {
	Discount    shared.Number             `json:"discount"`
	BundleItems []catalog.BundleItemInput `json:"bundleItems" binding:"required,min=1,dive"`
}

// BundlePriceResponse is the previewed bundle price
type BundlePriceResponse struct {
	DailyRentalPrice decimal.Decimal `json:"dailyRentalPrice"`
}

// PreviewBundlePrice handles POST /bundles/price-preview
func (h *CatalogHandler) PreviewBundlePrice(c *gin.Context) {
	var req BundlePriceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	price, err := h.catalog.PreviewBundlePrice(c.Request.Context(), req.BundleItems, req.Discount.Decimal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BundlePriceResponse{DailyRentalPrice: price})
}
