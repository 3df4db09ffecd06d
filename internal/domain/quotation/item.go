package quotation

import (
	"github.com/shopspring/decimal"
)

// ItemType classifies a quotation line
type ItemType string

const (
	ItemTypeRental  ItemType = "rental"
	ItemTypeService ItemType = "service"
	ItemTypeSale    ItemType = "sale"
)

// Item defaults applied when neither the input nor the catalog provides a value
const (
	DefaultItemQuantity = 1
	DefaultItemUnit     = "Set"
	DefaultItemDays     = 1
	DefaultItemType     = ItemTypeRental
)

// EquipmentSnapshot is the catalog data used to prefill an item.
// It is copied at insertion; later catalog changes do not affect the item.
type EquipmentSnapshot struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	DailyRentalPrice decimal.Decimal `json:"dailyRentalPrice"`
}

// Item is a quotation line held in a Draft
type Item struct {
	Handle      Handle
	ServerID    int64
	Group       Handle // NoHandle for standalone items
	EquipmentID *int64
	Equipment   *EquipmentSnapshot
	ItemName    string
	Description string
	Quantity    int
	Unit        string
	PricePerDay decimal.Decimal
	Days        int
	Total       decimal.Decimal
	Type        ItemType
	Remarks     string
}

// LineTotal returns pricePerDay x quantity x days
func LineTotal(pricePerDay decimal.Decimal, quantity, days int) decimal.Decimal {
	return pricePerDay.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(int64(days)))
}

// IsStandalone reports whether the item sits outside any group
func (i *Item) IsStandalone() bool {
	return i.Group.IsZero()
}

func (i *Item) recalculate() {
	i.Total = LineTotal(i.PricePerDay, i.Quantity, i.Days)
}

// newItemFromInput resolves explicit values, then equipment defaults, then item defaults
func newItemFromInput(h Handle, group Handle, in AddItemInput, eq *EquipmentSnapshot) Item {
	item := Item{
		Handle:      h,
		Group:       group,
		EquipmentID: in.EquipmentID,
		ItemName:    in.ItemName,
		Description: in.Description,
		Quantity:    DefaultItemQuantity,
		Unit:        in.Unit,
		Days:        DefaultItemDays,
		Type:        in.Type,
		Remarks:     in.Remarks,
	}
	if eq != nil {
		snap := *eq
		item.Equipment = &snap
		if item.ItemName == "" {
			item.ItemName = eq.Name
		}
		item.PricePerDay = eq.DailyRentalPrice
	}
	if in.PricePerDay != nil {
		item.PricePerDay = *in.PricePerDay
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.Days != nil {
		item.Days = *in.Days
	}
	if item.Unit == "" {
		item.Unit = DefaultItemUnit
	}
	if item.Type == "" {
		item.Type = DefaultItemType
	}
	item.recalculate()
	return item
}
