package catalog

import (
	"time"

	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Bundle is a discounted package of equipment rented together
type Bundle struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	DailyRentalPrice decimal.Decimal `json:"dailyRentalPrice"`
	Discount         decimal.Decimal `json:"discount"`
	IsActive         bool            `json:"isActive"`
	BundleItems      []BundleItem    `json:"bundleItems"`
	CreatedAt        *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
}

// BundleItem is one equipment line of a bundle
type BundleItem struct {
	ID          int64      `json:"id,omitempty"`
	BundleID    int64      `json:"bundleId,omitempty"`
	EquipmentID int64      `json:"equipmentId"`
	Quantity    int        `json:"quantity"`
	Equipment   *Equipment `json:"equipment,omitempty"`
}

// BundleItemInput is one equipment line of a bundle write
type BundleItemInput struct {
	EquipmentID int64 `json:"equipmentId" binding:"required,gt=0"`
	Quantity    int   `json:"quantity" binding:"required,gt=0"`
}

// BundleInput is the body of bundle create and update calls.
// DailyRentalPrice is derived from the items and the discount.
type BundleInput struct {
	Name             string            `json:"name" binding:"required,max=200"`
	Description      string            `json:"description" binding:"max=2000"`
	Discount         shared.Number     `json:"discount"`
	IsActive         *bool             `json:"isActive"`
	BundleItems      []BundleItemInput `json:"bundleItems" binding:"required,min=1,dive"`
	DailyRentalPrice shared.Number     `json:"dailyRentalPrice"`
}

// ErrInvalidDiscount is returned for discounts outside 0..100
var ErrInvalidDiscount = shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100")

// PriceLine is a priced bundle line used for price calculation
type PriceLine struct {
	DailyRentalPrice decimal.Decimal
	Quantity         int
}

// BundlePrice returns sum(daily price x quantity) x (1 - discount/100)
func BundlePrice(lines []PriceLine, discount decimal.Decimal) (decimal.Decimal, error) {
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return decimal.Zero, ErrInvalidDiscount
	}
	gross := decimal.Zero
	for _, l := range lines {
		gross = gross.Add(l.DailyRentalPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	factor := hundred.Sub(discount).Div(hundred)
	return gross.Mul(factor), nil
}

// Price recalculates the bundle price from its items' equipment.
// Lines without loaded equipment contribute nothing.
func (b Bundle) Price() (decimal.Decimal, error) {
	lines := make([]PriceLine, 0, len(b.BundleItems))
	for _, it := range b.BundleItems {
		if it.Equipment == nil {
			continue
		}
		lines = append(lines, PriceLine{DailyRentalPrice: it.Equipment.DailyRentalPrice, Quantity: it.Quantity})
	}
	return BundlePrice(lines, b.Discount)
}
