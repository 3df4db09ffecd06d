package quotation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Document defaults for a new quotation
const (
	DefaultValidityDays = 30
)

var (
	// DefaultTaxRate is the VAT percentage applied to new quotations
	DefaultTaxRate = decimal.NewFromInt(11)
	hundred        = decimal.NewFromInt(100)
)

// Draft errors
var (
	ErrNoActiveSection = shared.NewDomainError("NO_ACTIVE_SECTION", "Select a section before adding a group")
	ErrSectionNotFound = shared.NewDomainError("SECTION_NOT_FOUND", "Section not found in this quotation")
	ErrGroupNotFound   = shared.NewDomainError("GROUP_NOT_FOUND", "Group not found in this quotation")
	ErrItemNotFound    = shared.NewDomainError("ITEM_NOT_FOUND", "Item not found in this quotation")
	ErrItemNameMissing = shared.NewDomainError("INVALID_ITEM_NAME", "Item name is required when no equipment is selected")
	ErrEmptyQuotation  = shared.NewDomainError("EMPTY_QUOTATION", "Quotation must have at least one item")

	ErrInvalidTransition = shared.NewDomainError("INVALID_STATUS_TRANSITION", "Quotation status cannot change this way")
)

// Header holds the document-level fields of a quotation
type Header struct {
	QuotationNumber    string
	ClientName         string
	ClientEmail        string
	ClientPhone        string
	ClientAddress      string
	ProjectName        string
	ProjectDescription string
	IssueDate          string
	ValidUntil         string
	Status             Status
	Notes              string
	Terms              string
}

// Section is a dated block of groups
type Section struct {
	Handle      Handle
	ServerID    int64
	Name        string
	Date        string
	Description string
	Subtotal    decimal.Decimal
}

// Group is a named set of items inside one section
type Group struct {
	Handle      Handle
	ServerID    int64
	Section     Handle
	Name        string
	Description string
	Total       decimal.Decimal
}

// Totals are the document-level derived amounts
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// Selection is the current target for new groups and items
type Selection struct {
	Section Handle
	Group   Handle
}

// Draft is the in-memory quotation being edited. It holds sections, groups
// and items in insertion order and keeps every derived amount current by
// calling Recompute after each mutation. A Draft is not safe for concurrent use.
type Draft struct {
	ID          uuid.UUID
	QuotationID int64 // server id when editing an existing quotation
	Header      Header
	Tax         decimal.Decimal
	Discount    decimal.Decimal

	sections  arena[Section]
	groups    arena[Group]
	items     arena[Item]
	selection Selection
	totals    Totals
}

// NewDraft creates an empty draft with the default header for a new quotation
func NewDraft(number string, now time.Time) *Draft {
	d := &Draft{
		ID: uuid.New(),
		Header: Header{
			QuotationNumber: number,
			IssueDate:       now.Format(DateLayout),
			ValidUntil:      now.AddDate(0, 0, DefaultValidityDays).Format(DateLayout),
			Status:          StatusDraft,
		},
		Tax:      DefaultTaxRate,
		Discount: decimal.Zero,
	}
	d.Recompute()
	return d
}

// IsNew reports whether the draft creates a quotation rather than editing one
func (d *Draft) IsNew() bool {
	return d.QuotationID == 0
}

// SetHeader replaces the document-level fields. The status may stay as it
// is or move one step along the quotation lifecycle.
func (d *Draft) SetHeader(in HeaderInput) error {
	if err := Validate(in); err != nil {
		return err
	}
	status := in.Status
	if status == "" {
		status = d.Header.Status
	}
	if status != d.Header.Status && !d.Header.Status.CanTransitionTo(status) {
		return shared.NewDomainError(ErrInvalidTransition.Code,
			fmt.Sprintf("Cannot change status from %s to %s", d.Header.Status, status))
	}
	d.Header = Header{
		QuotationNumber:    in.QuotationNumber,
		ClientName:         in.ClientName,
		ClientEmail:        in.ClientEmail,
		ClientPhone:        in.ClientPhone,
		ClientAddress:      in.ClientAddress,
		ProjectName:        in.ProjectName,
		ProjectDescription: in.ProjectDescription,
		IssueDate:          in.IssueDate,
		ValidUntil:         in.ValidUntil,
		Status:             status,
		Notes:              in.Notes,
		Terms:              in.Terms,
	}
	return nil
}

// SetRates updates tax and discount percentages and recomputes totals
func (d *Draft) SetRates(in RatesInput) error {
	if err := Validate(in); err != nil {
		return err
	}
	d.Tax = in.Tax
	d.Discount = in.Discount
	d.Recompute()
	return nil
}

// ============================================================================
// Sections
// ============================================================================

// AddSection appends a section and makes it the active selection
func (d *Draft) AddSection(in AddSectionInput) (Handle, error) {
	if err := Validate(in); err != nil {
		return NoHandle, err
	}
	h := d.sections.insert(func(h Handle) Section {
		return Section{
			Handle:      h,
			Name:        in.Name,
			Date:        in.Date,
			Description: in.Description,
			Subtotal:    decimal.Zero,
		}
	})
	d.selection = Selection{Section: h}
	d.Recompute()
	return h, nil
}

// RemoveSection removes a section together with its groups and their items
func (d *Draft) RemoveSection(h Handle) error {
	if _, ok := d.sections.get(h); !ok {
		return ErrSectionNotFound
	}
	removedGroups := d.groups.removeWhere(func(g *Group) bool { return g.Section == h })
	for _, g := range removedGroups {
		d.items.removeWhere(func(it *Item) bool { return it.Group == g })
		if d.selection.Group == g {
			d.selection.Group = NoHandle
		}
	}
	d.sections.remove(h)
	if d.selection.Section == h {
		d.selection = Selection{}
	}
	d.Recompute()
	return nil
}

// Section returns a copy of the section with handle h
func (d *Draft) Section(h Handle) (Section, bool) {
	s, ok := d.sections.get(h)
	if !ok {
		return Section{}, false
	}
	return *s, true
}

// Sections returns copies of all sections in insertion order
func (d *Draft) Sections() []Section {
	out := make([]Section, 0, d.sections.len())
	d.sections.each(func(s *Section) { out = append(out, *s) })
	return out
}

// ============================================================================
// Groups
// ============================================================================

// AddGroup appends a group to the active section and makes it the active group
func (d *Draft) AddGroup(in AddGroupInput) (Handle, error) {
	if err := Validate(in); err != nil {
		return NoHandle, err
	}
	section := d.selection.Section
	if _, ok := d.sections.get(section); !ok {
		return NoHandle, ErrNoActiveSection
	}
	h := d.groups.insert(func(h Handle) Group {
		return Group{
			Handle:      h,
			Section:     section,
			Name:        in.Name,
			Description: in.Description,
			Total:       decimal.Zero,
		}
	})
	d.selection.Group = h
	d.Recompute()
	return h, nil
}

// RemoveGroup removes a group together with its items
func (d *Draft) RemoveGroup(h Handle) error {
	if _, ok := d.groups.get(h); !ok {
		return ErrGroupNotFound
	}
	d.items.removeWhere(func(it *Item) bool { return it.Group == h })
	d.groups.remove(h)
	if d.selection.Group == h {
		d.selection.Group = NoHandle
	}
	d.Recompute()
	return nil
}

// Group returns a copy of the group with handle h
func (d *Draft) Group(h Handle) (Group, bool) {
	g, ok := d.groups.get(h)
	if !ok {
		return Group{}, false
	}
	return *g, true
}

// Groups returns copies of all groups in insertion order
func (d *Draft) Groups() []Group {
	out := make([]Group, 0, d.groups.len())
	d.groups.each(func(g *Group) { out = append(out, *g) })
	return out
}

// GroupsOf returns the groups owned by a section
func (d *Draft) GroupsOf(section Handle) []Group {
	var out []Group
	d.groups.each(func(g *Group) {
		if g.Section == section {
			out = append(out, *g)
		}
	})
	return out
}

// ============================================================================
// Items
// ============================================================================

// AddItem appends an item to the active group, or as a standalone item when
// no group is selected. eq carries catalog defaults for the referenced
// equipment and is nil when there is no reference or the catalog lacks it.
func (d *Draft) AddItem(in AddItemInput, eq *EquipmentSnapshot) (Handle, error) {
	if err := Validate(in); err != nil {
		return NoHandle, err
	}
	if eq != nil && (in.EquipmentID == nil || *in.EquipmentID != eq.ID) {
		eq = nil
	}
	if in.ItemName == "" && eq == nil {
		return NoHandle, ErrItemNameMissing
	}
	group := d.selection.Group
	if _, ok := d.groups.get(group); !ok {
		group = NoHandle
	}
	h := d.items.insert(func(h Handle) Item {
		return newItemFromInput(h, group, in, eq)
	})
	d.Recompute()
	return h, nil
}

// RemoveItem removes a single item
func (d *Draft) RemoveItem(h Handle) error {
	if !d.items.remove(h) {
		return ErrItemNotFound
	}
	d.Recompute()
	return nil
}

// Item returns a copy of the item with handle h
func (d *Draft) Item(h Handle) (Item, bool) {
	it, ok := d.items.get(h)
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Items returns copies of all items in insertion order
func (d *Draft) Items() []Item {
	out := make([]Item, 0, d.items.len())
	d.items.each(func(it *Item) { out = append(out, *it) })
	return out
}

// ItemsOf returns the items owned by a group
func (d *Draft) ItemsOf(group Handle) []Item {
	var out []Item
	d.items.each(func(it *Item) {
		if it.Group == group {
			out = append(out, *it)
		}
	})
	return out
}

// StandaloneItems returns items that belong to no group
func (d *Draft) StandaloneItems() []Item {
	return d.ItemsOf(NoHandle)
}

// ItemSection returns the section an item belongs to through its group
func (d *Draft) ItemSection(h Handle) (Handle, bool) {
	it, ok := d.items.get(h)
	if !ok || it.IsStandalone() {
		return NoHandle, false
	}
	g, ok := d.groups.get(it.Group)
	if !ok {
		return NoHandle, false
	}
	return g.Section, true
}

// ItemCount returns the number of items, grouped or not
func (d *Draft) ItemCount() int {
	return d.items.len()
}

// ============================================================================
// Selection
// ============================================================================

// Selection returns the active section and group
func (d *Draft) Selection() Selection {
	return d.selection
}

// Select sets the active section and group. A group implies its section;
// a zero section clears the selection.
func (d *Draft) Select(section, group Handle) error {
	if !group.IsZero() {
		g, ok := d.groups.get(group)
		if !ok {
			return ErrGroupNotFound
		}
		d.selection = Selection{Section: g.Section, Group: group}
		return nil
	}
	if section.IsZero() {
		d.selection = Selection{}
		return nil
	}
	if _, ok := d.sections.get(section); !ok {
		return ErrSectionNotFound
	}
	d.selection = Selection{Section: section}
	return nil
}

// ============================================================================
// Derived values
// ============================================================================

// Recompute derives every item total, group total, section subtotal and the
// document totals from the current collections and rates. It only reads
// inputs, so calling it again without a mutation yields identical results.
func (d *Draft) Recompute() Totals {
	subtotal := decimal.Zero
	groupTotals := make(map[Handle]decimal.Decimal)
	d.items.each(func(it *Item) {
		it.recalculate()
		subtotal = subtotal.Add(it.Total)
		if !it.IsStandalone() {
			groupTotals[it.Group] = groupTotals[it.Group].Add(it.Total)
		}
	})

	sectionTotals := make(map[Handle]decimal.Decimal)
	d.groups.each(func(g *Group) {
		g.Total = groupTotals[g.Handle]
		sectionTotals[g.Section] = sectionTotals[g.Section].Add(g.Total)
	})
	d.sections.each(func(s *Section) {
		s.Subtotal = sectionTotals[s.Handle]
	})

	taxAmount := subtotal.Mul(d.Tax).Div(hundred)
	discountAmount := subtotal.Mul(d.Discount).Div(hundred)
	d.totals = Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		Total:          subtotal.Add(taxAmount).Sub(discountAmount),
	}
	return d.totals
}

// Totals returns the document totals as of the last Recompute
func (d *Draft) Totals() Totals {
	return d.totals
}

// Validate checks the draft can be submitted
func (d *Draft) Validate() error {
	if d.items.len() == 0 {
		return ErrEmptyQuotation
	}
	return Validate(d.Header.input())
}

func (h Header) input() HeaderInput {
	return HeaderInput{
		QuotationNumber:    h.QuotationNumber,
		ClientName:         h.ClientName,
		ClientEmail:        h.ClientEmail,
		ClientPhone:        h.ClientPhone,
		ClientAddress:      h.ClientAddress,
		ProjectName:        h.ProjectName,
		ProjectDescription: h.ProjectDescription,
		IssueDate:          h.IssueDate,
		ValidUntil:         h.ValidUntil,
		Status:             h.Status,
		Notes:              h.Notes,
		Terms:              h.Terms,
	}
}
