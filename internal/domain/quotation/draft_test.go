package quotation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper functions

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestDraft() *Draft {
	return NewDraft("Q-20240101-0001", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
}

func itemInput(name, price string, qty, days int) AddItemInput {
	return AddItemInput{
		ItemName:    name,
		PricePerDay: decPtr(price),
		Quantity:    intPtr(qty),
		Days:        intPtr(days),
	}
}

func mustAddItem(t *testing.T, d *Draft, in AddItemInput) Handle {
	t.Helper()
	h, err := d.AddItem(in, nil)
	require.NoError(t, err)
	return h
}

func mustAddSection(t *testing.T, d *Draft, name string) Handle {
	t.Helper()
	h, err := d.AddSection(AddSectionInput{Name: name, Date: "2024-01-10"})
	require.NoError(t, err)
	return h
}

func mustAddGroup(t *testing.T, d *Draft, name string) Handle {
	t.Helper()
	h, err := d.AddGroup(AddGroupInput{Name: name})
	require.NoError(t, err)
	return h
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// ============================================================================
// NewDraft Tests
// ============================================================================

func TestNewDraft_Defaults(t *testing.T) {
	d := newTestDraft()

	assert.Equal(t, "Q-20240101-0001", d.Header.QuotationNumber)
	assert.Equal(t, "2024-01-01", d.Header.IssueDate)
	assert.Equal(t, "2024-01-31", d.Header.ValidUntil)
	assert.Equal(t, StatusDraft, d.Header.Status)
	assertDecimal(t, "11", d.Tax)
	assertDecimal(t, "0", d.Discount)
	assert.True(t, d.IsNew())
	assertDecimal(t, "0", d.Totals().Total)
}

// ============================================================================
// Recompute Tests
// ============================================================================

func TestRecompute_WorkedExample(t *testing.T) {
	d := newTestDraft()
	mustAddItem(t, d, itemInput("Genset 5kVA", "100", 2, 3))
	mustAddItem(t, d, itemInput("Cable", "50", 1, 1))

	items := d.Items()
	require.Len(t, items, 2)
	assertDecimal(t, "600", items[0].Total)
	assertDecimal(t, "50", items[1].Total)

	totals := d.Totals()
	assertDecimal(t, "650", totals.Subtotal)
	assertDecimal(t, "71.5", totals.TaxAmount)
	assertDecimal(t, "0", totals.DiscountAmount)
	assertDecimal(t, "721.5", totals.Total)
}

func TestRecompute_Discount(t *testing.T) {
	d := newTestDraft()
	mustAddItem(t, d, itemInput("Tent", "1000", 1, 1))
	require.NoError(t, d.SetRates(RatesInput{Tax: decimal.NewFromInt(10), Discount: decimal.NewFromInt(5)}))

	totals := d.Totals()
	assertDecimal(t, "100", totals.TaxAmount)
	assertDecimal(t, "50", totals.DiscountAmount)
	assertDecimal(t, "1050", totals.Total)
}

func TestRecompute_Idempotent(t *testing.T) {
	d := newTestDraft()
	mustAddSection(t, d, "Day 1")
	mustAddGroup(t, d, "Sound")
	mustAddItem(t, d, itemInput("Speaker", "333.33", 3, 7))
	mustAddItem(t, d, itemInput("Mic", "12.5", 1, 2))
	require.NoError(t, d.Select(NoHandle, NoHandle))
	mustAddItem(t, d, itemInput("Delivery", "75", 1, 1))

	first := d.Recompute()
	groupsBefore := d.Groups()
	sectionsBefore := d.Sections()
	second := d.Recompute()

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.TaxAmount.String(), second.TaxAmount.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.Equal(t, groupsBefore, d.Groups())
	assert.Equal(t, sectionsBefore, d.Sections())
}

func TestRecompute_SubtotalIndependentOfGrouping(t *testing.T) {
	d := newTestDraft()
	mustAddSection(t, d, "Day 1")
	g := mustAddGroup(t, d, "Lighting")
	mustAddItem(t, d, itemInput("Par LED", "20", 10, 2))
	require.NoError(t, d.Select(NoHandle, NoHandle))
	mustAddItem(t, d, itemInput("Operator", "150", 1, 2))

	totals := d.Totals()
	assertDecimal(t, "700", totals.Subtotal)

	group, ok := d.Group(g)
	require.True(t, ok)
	assertDecimal(t, "400", group.Total)

	// Section subtotal only counts group totals, never standalone items
	s := d.Sections()[0]
	assertDecimal(t, "400", s.Subtotal)
}

func TestRecompute_SectionCountsOnlyOwnGroups(t *testing.T) {
	d := newTestDraft()
	s1 := mustAddSection(t, d, "Day 1")
	mustAddGroup(t, d, "A")
	mustAddItem(t, d, itemInput("a", "10", 1, 1))
	s2 := mustAddSection(t, d, "Day 2")
	mustAddGroup(t, d, "B")
	mustAddItem(t, d, itemInput("b", "20", 1, 1))
	mustAddGroup(t, d, "C")
	mustAddItem(t, d, itemInput("c", "5", 2, 1))

	sec1, _ := d.Section(s1)
	sec2, _ := d.Section(s2)
	assertDecimal(t, "10", sec1.Subtotal)
	assertDecimal(t, "30", sec2.Subtotal)
	assertDecimal(t, "40", d.Totals().Subtotal)
}

// ============================================================================
// Section Tests
// ============================================================================

func TestAddSection_BecomesActive(t *testing.T) {
	d := newTestDraft()
	s := mustAddSection(t, d, "Setup")

	assert.Equal(t, Selection{Section: s}, d.Selection())
	sec, ok := d.Section(s)
	require.True(t, ok)
	assert.True(t, sec.Subtotal.IsZero())
}

func TestAddSection_Validation(t *testing.T) {
	d := newTestDraft()
	tests := []struct {
		name  string
		input AddSectionInput
	}{
		{"missing name", AddSectionInput{Date: "2024-01-10"}},
		{"missing date", AddSectionInput{Name: "Setup"}},
		{"bad date", AddSectionInput{Name: "Setup", Date: "10/01/2024"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.AddSection(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
	assert.Empty(t, d.Sections())
}

func TestRemoveSection_Cascades(t *testing.T) {
	d := newTestDraft()
	s1 := mustAddSection(t, d, "Day 1")
	g1 := mustAddGroup(t, d, "Sound")
	i1 := mustAddItem(t, d, itemInput("Speaker", "100", 1, 1))
	g2 := mustAddGroup(t, d, "Light")
	i2 := mustAddItem(t, d, itemInput("Par", "10", 4, 1))

	s2 := mustAddSection(t, d, "Day 2")
	g3 := mustAddGroup(t, d, "Stage")
	i3 := mustAddItem(t, d, itemInput("Riser", "40", 2, 1))

	require.NoError(t, d.Select(NoHandle, NoHandle))
	i4 := mustAddItem(t, d, itemInput("Transport", "60", 1, 1))

	require.NoError(t, d.Select(NoHandle, g1))
	require.NoError(t, d.RemoveSection(s1))

	_, ok := d.Section(s1)
	assert.False(t, ok)
	for _, g := range []Handle{g1, g2} {
		_, ok := d.Group(g)
		assert.False(t, ok)
	}
	for _, it := range []Handle{i1, i2} {
		_, ok := d.Item(it)
		assert.False(t, ok)
	}

	// Everything outside the removed subtree survives
	_, ok = d.Section(s2)
	assert.True(t, ok)
	_, ok = d.Group(g3)
	assert.True(t, ok)
	_, ok = d.Item(i3)
	assert.True(t, ok)
	_, ok = d.Item(i4)
	assert.True(t, ok)

	for _, it := range d.Items() {
		if !it.IsStandalone() {
			_, ok := d.Group(it.Group)
			assert.True(t, ok, "item %s references a removed group", it.ItemName)
		}
	}
	assert.Equal(t, Selection{}, d.Selection())
	assertDecimal(t, "140", d.Totals().Subtotal)
}

func TestRemoveSection_KeepsUnrelatedSelection(t *testing.T) {
	d := newTestDraft()
	s1 := mustAddSection(t, d, "Day 1")
	s2 := mustAddSection(t, d, "Day 2")
	g := mustAddGroup(t, d, "Crew")

	require.NoError(t, d.RemoveSection(s1))
	assert.Equal(t, Selection{Section: s2, Group: g}, d.Selection())
}

func TestRemoveSection_NotFound(t *testing.T) {
	d := newTestDraft()
	s := mustAddSection(t, d, "Day 1")
	require.NoError(t, d.RemoveSection(s))
	assert.ErrorIs(t, d.RemoveSection(s), ErrSectionNotFound)
}

// ============================================================================
// Group Tests
// ============================================================================

func TestAddGroup_RequiresActiveSection(t *testing.T) {
	d := newTestDraft()
	_, err := d.AddGroup(AddGroupInput{Name: "Sound"})
	assert.ErrorIs(t, err, ErrNoActiveSection)
	assert.Empty(t, d.Groups())
}

func TestAddGroup_TaggedToActiveSection(t *testing.T) {
	d := newTestDraft()
	s := mustAddSection(t, d, "Day 1")
	g := mustAddGroup(t, d, "Sound")

	group, ok := d.Group(g)
	require.True(t, ok)
	assert.Equal(t, s, group.Section)
	assert.True(t, group.Total.IsZero())
	assert.Equal(t, Selection{Section: s, Group: g}, d.Selection())
}

func TestRemoveGroup_Cascades(t *testing.T) {
	d := newTestDraft()
	s := mustAddSection(t, d, "Day 1")
	g1 := mustAddGroup(t, d, "Sound")
	mustAddItem(t, d, itemInput("Speaker", "100", 2, 1))
	g2 := mustAddGroup(t, d, "Light")
	keep := mustAddItem(t, d, itemInput("Par", "10", 1, 1))

	require.NoError(t, d.RemoveGroup(g1))

	assert.Len(t, d.Items(), 1)
	_, ok := d.Item(keep)
	assert.True(t, ok)
	assert.Equal(t, Selection{Section: s, Group: g2}, d.Selection())
	sec, _ := d.Section(s)
	assertDecimal(t, "10", sec.Subtotal)
	assert.ErrorIs(t, d.RemoveGroup(g1), ErrGroupNotFound)
}

func TestRemoveGroup_ClearsActiveGroup(t *testing.T) {
	d := newTestDraft()
	s := mustAddSection(t, d, "Day 1")
	g := mustAddGroup(t, d, "Sound")
	require.NoError(t, d.RemoveGroup(g))
	assert.Equal(t, Selection{Section: s}, d.Selection())

	// Items added afterwards are standalone
	h := mustAddItem(t, d, itemInput("Mic", "5", 1, 1))
	it, _ := d.Item(h)
	assert.True(t, it.IsStandalone())
}

// ============================================================================
// Item Tests
// ============================================================================

func TestAddItem_Defaults(t *testing.T) {
	d := newTestDraft()
	h := mustAddItem(t, d, AddItemInput{ItemName: "Crew", PricePerDay: decPtr("250")})

	it, ok := d.Item(h)
	require.True(t, ok)
	assert.Equal(t, 1, it.Quantity)
	assert.Equal(t, 1, it.Days)
	assert.Equal(t, "Set", it.Unit)
	assert.Equal(t, ItemTypeRental, it.Type)
	assertDecimal(t, "250", it.Total)
}

func TestAddItem_EquipmentDefaults(t *testing.T) {
	d := newTestDraft()
	eq := &EquipmentSnapshot{ID: 9, Name: "Generator 10kVA", DailyRentalPrice: decimal.NewFromInt(500)}

	t.Run("catalog fills name and price", func(t *testing.T) {
		h, err := d.AddItem(AddItemInput{EquipmentID: int64Ptr(9), Quantity: intPtr(2), Days: intPtr(3)}, eq)
		require.NoError(t, err)
		it, _ := d.Item(h)
		assert.Equal(t, "Generator 10kVA", it.ItemName)
		assertDecimal(t, "500", it.PricePerDay)
		assertDecimal(t, "3000", it.Total)
		require.NotNil(t, it.Equipment)
		assert.Equal(t, int64(9), it.Equipment.ID)
	})

	t.Run("explicit values win", func(t *testing.T) {
		h, err := d.AddItem(AddItemInput{
			EquipmentID: int64Ptr(9),
			ItemName:    "Genset (discounted)",
			PricePerDay: decPtr("450"),
		}, eq)
		require.NoError(t, err)
		it, _ := d.Item(h)
		assert.Equal(t, "Genset (discounted)", it.ItemName)
		assertDecimal(t, "450", it.PricePerDay)
	})

	t.Run("explicit zero price wins", func(t *testing.T) {
		h, err := d.AddItem(AddItemInput{EquipmentID: int64Ptr(9), PricePerDay: decPtr("0")}, eq)
		require.NoError(t, err)
		it, _ := d.Item(h)
		assert.True(t, it.PricePerDay.IsZero())
	})

	t.Run("snapshot for other equipment is ignored", func(t *testing.T) {
		_, err := d.AddItem(AddItemInput{EquipmentID: int64Ptr(10)}, eq)
		assert.ErrorIs(t, err, ErrItemNameMissing)
	})

	t.Run("later catalog changes do not affect the item", func(t *testing.T) {
		local := *eq
		h, err := d.AddItem(AddItemInput{EquipmentID: int64Ptr(9)}, &local)
		require.NoError(t, err)
		local.DailyRentalPrice = decimal.NewFromInt(999)
		it, _ := d.Item(h)
		assertDecimal(t, "500", it.PricePerDay)
	})
}

func TestAddItem_Validation(t *testing.T) {
	d := newTestDraft()
	tests := []struct {
		name  string
		input AddItemInput
	}{
		{"zero quantity", AddItemInput{ItemName: "x", Quantity: intPtr(0)}},
		{"negative days", AddItemInput{ItemName: "x", Days: intPtr(-1)}},
		{"negative price", AddItemInput{ItemName: "x", PricePerDay: decPtr("-1")}},
		{"unknown type", AddItemInput{ItemName: "x", Type: "lease"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.AddItem(tt.input, nil)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
	assert.Zero(t, d.ItemCount())
}

func TestAddItem_TaggedWithActiveGroup(t *testing.T) {
	d := newTestDraft()
	s := mustAddSection(t, d, "Day 1")
	g := mustAddGroup(t, d, "Sound")
	h := mustAddItem(t, d, itemInput("Mixer", "80", 1, 1))

	it, _ := d.Item(h)
	assert.Equal(t, g, it.Group)
	sec, ok := d.ItemSection(h)
	require.True(t, ok)
	assert.Equal(t, s, sec)
}

func TestRemoveItem(t *testing.T) {
	d := newTestDraft()
	a := mustAddItem(t, d, itemInput("a", "10", 1, 1))
	mustAddItem(t, d, itemInput("b", "5", 1, 1))

	require.NoError(t, d.RemoveItem(a))
	assertDecimal(t, "5", d.Totals().Subtotal)
	assert.ErrorIs(t, d.RemoveItem(a), ErrItemNotFound)
}

// ============================================================================
// Selection Tests
// ============================================================================

func TestSelect(t *testing.T) {
	d := newTestDraft()
	s1 := mustAddSection(t, d, "Day 1")
	g1 := mustAddGroup(t, d, "Sound")
	s2 := mustAddSection(t, d, "Day 2")

	require.NoError(t, d.Select(NoHandle, g1))
	assert.Equal(t, Selection{Section: s1, Group: g1}, d.Selection())

	require.NoError(t, d.Select(s2, NoHandle))
	assert.Equal(t, Selection{Section: s2}, d.Selection())

	assert.ErrorIs(t, d.Select(Handle(12345), NoHandle), ErrSectionNotFound)
	assert.ErrorIs(t, d.Select(NoHandle, Handle(12345)), ErrGroupNotFound)
}

// ============================================================================
// Submission Tests
// ============================================================================

func withHeader(t *testing.T, d *Draft) {
	t.Helper()
	require.NoError(t, d.SetHeader(HeaderInput{
		QuotationNumber: d.Header.QuotationNumber,
		ClientName:      "PT Sinar Jaya",
		IssueDate:       "2024-01-01",
		ValidUntil:      "2024-01-31",
	}))
}

func TestSetHeader_StatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		target  Status
		wantErr bool
	}{
		{name: "empty keeps current", current: StatusSent, target: ""},
		{name: "unchanged", current: StatusApproved, target: StatusApproved},
		{name: "draft to sent", current: StatusDraft, target: StatusSent},
		{name: "sent to approved", current: StatusSent, target: StatusApproved},
		{name: "draft skips sent", current: StatusDraft, target: StatusApproved, wantErr: true},
		{name: "sent back to draft", current: StatusSent, target: StatusDraft, wantErr: true},
		{name: "rejected reopened", current: StatusRejected, target: StatusDraft, wantErr: true},
		{name: "converted is terminal", current: StatusConvertedToInvoice, target: StatusApproved, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := savedQuotation()
			q.Status = tt.current
			d, _ := FromQuotation(q)

			err := d.SetHeader(HeaderInput{
				QuotationNumber: q.QuotationNumber,
				ClientName:      "CV Nusantara",
				IssueDate:       "2024-01-02",
				Status:          tt.target,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.current, d.Header.Status)
				assert.Equal(t, "PT Sinar Jaya", d.Header.ClientName, "header is left untouched")
				return
			}
			require.NoError(t, err)
			want := tt.target
			if want == "" {
				want = tt.current
			}
			assert.Equal(t, want, d.Header.Status)
			assert.Equal(t, "CV Nusantara", d.Header.ClientName)
		})
	}
}

func TestSubmission_RequiresItem(t *testing.T) {
	d := newTestDraft()
	withHeader(t, d)
	mustAddSection(t, d, "Day 1")
	mustAddGroup(t, d, "Empty")

	_, err := d.Submission()
	assert.ErrorIs(t, err, ErrEmptyQuotation)
	assert.Len(t, d.Groups(), 1, "state is left untouched")
}

func TestSubmission_RequiresClient(t *testing.T) {
	d := newTestDraft()
	mustAddItem(t, d, itemInput("a", "1", 1, 1))
	_, err := d.Submission()
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSubmission_NestedShape(t *testing.T) {
	d := newTestDraft()
	withHeader(t, d)
	mustAddSection(t, d, "Day 1")
	mustAddGroup(t, d, "Sound")
	mustAddItem(t, d, itemInput("Speaker", "100", 2, 3))
	require.NoError(t, d.Select(NoHandle, NoHandle))
	mustAddItem(t, d, itemInput("Transport", "50", 1, 1))

	sub, err := d.Submission()
	require.NoError(t, err)
	require.Len(t, sub.Sections, 1)
	require.Len(t, sub.Sections[0].Groups, 1)
	require.Len(t, sub.Sections[0].Groups[0].Items, 1)
	require.Len(t, sub.Items, 1)
	assert.Equal(t, "Transport", sub.Items[0].ItemName)

	raw, err := json.Marshal(sub)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 650.0, body["subtotal"])
	assert.Equal(t, 721.5, body["total"])
	assert.Equal(t, 11.0, body["tax"])
	assert.Equal(t, "draft", body["status"])
	sections := body["sections"].([]any)
	group := sections[0].(map[string]any)["groups"].([]any)[0].(map[string]any)
	item := group["items"].([]any)[0].(map[string]any)
	assert.Equal(t, 600.0, item["total"])
	assert.Equal(t, 100.0, item["pricePerDay"])
	_, hasID := item["id"]
	assert.False(t, hasID, "unsaved items carry no id")
}

// ============================================================================
// Load / remap Tests
// ============================================================================

func savedQuotation() Quotation {
	return Quotation{
		ID:              41,
		QuotationNumber: "Q-20240101-0001",
		ClientName:      "PT Sinar Jaya",
		IssueDate:       "2024-01-01",
		Tax:             decimal.NewFromInt(11),
		Discount:        decimal.Zero,
		Status:          StatusSent,
		Sections: []SectionRecord{{
			ID: 3, Name: "Day 1", Date: "2024-01-10",
			Groups: []GroupRecord{{
				ID: 5, SectionID: 3, Name: "Sound",
				Items: []ItemRecord{{ID: 100, GroupID: int64Ptr(5), ItemName: "Speaker", Quantity: 2, Days: 3, PricePerDay: decimal.NewFromInt(100)}},
			}},
		}},
		Items: []ItemRecord{
			{ID: 100, GroupID: int64Ptr(5), ItemName: "Speaker", Quantity: 2, Days: 3, PricePerDay: decimal.NewFromInt(100)},
			{ID: 101, ItemName: "Transport", Quantity: 1, Days: 1, PricePerDay: decimal.NewFromInt(50)},
		},
	}
}

func TestFromQuotation(t *testing.T) {
	d, repairs := FromQuotation(savedQuotation())
	assert.Empty(t, repairs)

	assert.False(t, d.IsNew())
	assert.Equal(t, int64(41), d.QuotationID)
	assert.Equal(t, StatusSent, d.Header.Status)
	assert.Len(t, d.Sections(), 1)
	assert.Len(t, d.Groups(), 1)
	assert.Len(t, d.Items(), 2, "top-level copy of a grouped item is not duplicated")
	assert.Len(t, d.StandaloneItems(), 1)
	assertDecimal(t, "721.5", d.Totals().Total)

	sub, err := d.Submission()
	require.NoError(t, err)
	assert.Equal(t, int64(3), sub.Sections[0].ID)
	assert.Equal(t, int64(100), sub.Sections[0].Groups[0].Items[0].ID)
	assert.Equal(t, int64(101), sub.Items[0].ID)
}

func TestFromQuotation_RepairsOutOfRangeItems(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		days     int
		want     []Repair
	}{
		{name: "valid", quantity: 2, days: 3},
		{
			name: "zero quantity", quantity: 0, days: 3,
			want: []Repair{{ItemID: 101, ItemName: "Transport", Field: "quantity", Stored: 0, Used: DefaultItemQuantity}},
		},
		{
			name: "negative days", quantity: 2, days: -4,
			want: []Repair{{ItemID: 101, ItemName: "Transport", Field: "days", Stored: -4, Used: DefaultItemDays}},
		},
		{
			name: "both", quantity: -1, days: 0,
			want: []Repair{
				{ItemID: 101, ItemName: "Transport", Field: "quantity", Stored: -1, Used: DefaultItemQuantity},
				{ItemID: 101, ItemName: "Transport", Field: "days", Stored: 0, Used: DefaultItemDays},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := savedQuotation()
			q.Items[1].Quantity = tt.quantity
			q.Items[1].Days = tt.days

			d, repairs := FromQuotation(q)

			assert.Equal(t, tt.want, repairs)
			var loaded Item
			for _, it := range d.StandaloneItems() {
				loaded = it
			}
			assert.Positive(t, loaded.Quantity)
			assert.Positive(t, loaded.Days)
		})
	}
}

func TestAssignServerIDs(t *testing.T) {
	d := newTestDraft()
	withHeader(t, d)
	s := mustAddSection(t, d, "Day 1")
	g := mustAddGroup(t, d, "Sound")
	gi := mustAddItem(t, d, itemInput("Speaker", "100", 2, 3))
	require.NoError(t, d.Select(NoHandle, NoHandle))
	si := mustAddItem(t, d, itemInput("Transport", "50", 1, 1))

	ids := d.AssignServerIDs(savedQuotation())

	assert.Equal(t, int64(41), d.QuotationID)
	assert.Equal(t, int64(3), ids.Sections[s])
	assert.Equal(t, int64(5), ids.Groups[g])
	assert.Equal(t, int64(100), ids.Items[gi])
	assert.Equal(t, int64(101), ids.Items[si])

	it, _ := d.Item(si)
	assert.Equal(t, int64(101), it.ServerID)
}
