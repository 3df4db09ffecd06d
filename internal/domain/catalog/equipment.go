package catalog

import (
	"net/url"
	"strconv"
	"time"

	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CategoryRef is the embedded category summary on equipment
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Equipment is a rentable catalog entry owned by the rental backend
type Equipment struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	DailyRentalPrice decimal.Decimal `json:"dailyRentalPrice"`
	Quantity         int             `json:"quantity"`
	CategoryID       int64           `json:"categoryId"`
	Category         *CategoryRef    `json:"category,omitempty"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
}

// Snapshot returns the fields a quotation item copies from the catalog
func (e Equipment) Snapshot() quotation.EquipmentSnapshot {
	return quotation.EquipmentSnapshot{
		ID:               e.ID,
		Name:             e.Name,
		DailyRentalPrice: e.DailyRentalPrice,
	}
}

// EquipmentInput is the body of equipment create and update calls
type EquipmentInput struct {
	Name             string        `json:"name" binding:"required,max=200"`
	Description      string        `json:"description" binding:"max=2000"`
	DailyRentalPrice shared.Number `json:"dailyRentalPrice"`
	Quantity         int           `json:"quantity" binding:"gte=0"`
	CategoryID       int64         `json:"categoryId" binding:"required,gt=0"`
	IsActive         *bool         `json:"isActive"`
}

// Validate checks fields binding tags cannot express
func (in EquipmentInput) Validate() error {
	if in.DailyRentalPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Daily rental price cannot be negative")
	}
	return nil
}

// EquipmentFilter narrows an equipment list
type EquipmentFilter struct {
	CategoryID int64    `form:"categoryId"`
	Search     string   `form:"search"`
	MinPrice   *float64 `form:"minPrice"`
	MaxPrice   *float64 `form:"maxPrice"`
	IsActive   *bool    `form:"isActive"`
	Page       int      `form:"page"`
	Limit      int      `form:"limit"`
	Sort       string   `form:"sort"`
	Order      string   `form:"order"`
}

// Values encodes the non-empty filter fields as query parameters
func (f EquipmentFilter) Values() url.Values {
	v := pagingValues(f.Page, f.Limit, f.Search, f.Sort, f.Order)
	if f.CategoryID > 0 {
		v.Set("categoryId", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	return v
}

// ListFilter is the paging filter for categories and bundles
type ListFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Sort   string `form:"sort"`
	Order  string `form:"order"`
}

// Values encodes the non-empty filter fields as query parameters
func (f ListFilter) Values() url.Values {
	return pagingValues(f.Page, f.Limit, f.Search, f.Sort, f.Order)
}

func pagingValues(page, limit int, search, sort, order string) url.Values {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		v.Set("search", search)
	}
	if sort != "" {
		v.Set("sort", sort)
	}
	if order != "" {
		v.Set("order", order)
	}
	return v
}
