package quotation

import (
	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/shopspring/decimal"
)

// DraftResponse is the client view of a draft
type DraftResponse struct {
	ID                 uuid.UUID         `json:"id"`
	QuotationID        int64             `json:"quotationId,omitempty"`
	QuotationNumber    string            `json:"quotationNumber"`
	ClientName         string            `json:"clientName"`
	ClientEmail        string            `json:"clientEmail,omitempty"`
	ClientPhone        string            `json:"clientPhone,omitempty"`
	ClientAddress      string            `json:"clientAddress,omitempty"`
	ProjectName        string            `json:"projectName,omitempty"`
	ProjectDescription string            `json:"projectDescription,omitempty"`
	IssueDate          string            `json:"issueDate"`
	ValidUntil         string            `json:"validUntil,omitempty"`
	Status             quotation.Status  `json:"status"`
	Notes              string            `json:"notes,omitempty"`
	Terms              string            `json:"terms,omitempty"`
	Tax                decimal.Decimal   `json:"tax"`
	Discount           decimal.Decimal   `json:"discount"`
	Subtotal           decimal.Decimal   `json:"subtotal"`
	TaxAmount          decimal.Decimal   `json:"taxAmount"`
	DiscountAmount     decimal.Decimal   `json:"discountAmount"`
	Total              decimal.Decimal   `json:"total"`
	TotalDisplay       string            `json:"totalDisplay"`
	Selection          SelectionResponse `json:"selection"`
	Sections           []SectionResponse `json:"sections"`
	Items              []ItemResponse    `json:"items"`
}

// SelectionResponse is the active section and group
type SelectionResponse struct {
	Section string `json:"section,omitempty"`
	Group   string `json:"group,omitempty"`
}

// SectionResponse is a section with its groups
type SectionResponse struct {
	Handle      string          `json:"handle"`
	ServerID    int64           `json:"serverId,omitempty"`
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Groups      []GroupResponse `json:"groups"`
}

// GroupResponse is a group with its items
type GroupResponse struct {
	Handle      string          `json:"handle"`
	ServerID    int64           `json:"serverId,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Items       []ItemResponse  `json:"items"`
}

// ItemResponse is a line item
type ItemResponse struct {
	Handle      string                       `json:"handle"`
	ServerID    int64                        `json:"serverId,omitempty"`
	EquipmentID *int64                       `json:"equipmentId,omitempty"`
	Equipment   *quotation.EquipmentSnapshot `json:"equipment,omitempty"`
	ItemName    string                       `json:"itemName"`
	Description string                       `json:"description,omitempty"`
	Quantity    int                          `json:"quantity"`
	Unit        string                       `json:"unit"`
	PricePerDay decimal.Decimal              `json:"pricePerDay"`
	Days        int                          `json:"days"`
	Total       decimal.Decimal              `json:"total"`
	Type        quotation.ItemType           `json:"type"`
	Remarks     string                       `json:"remarks,omitempty"`
}

// SubmitResult is returned after a draft is saved on the backend
type SubmitResult struct {
	Quotation *quotation.Quotation `json:"quotation"`
	Created   bool                 `json:"created"`
	IDs       quotation.IDMap      `json:"ids"`
}

// ExportResult is an exported document and, when archived, where it was stored
type ExportResult struct {
	Document   *quotation.Document
	ArchiveKey string
	ArchiveURL string
}

// ToDraftResponse converts a draft to its client view
func ToDraftResponse(d *quotation.Draft) *DraftResponse {
	totals := d.Totals()
	sel := d.Selection()
	resp := &DraftResponse{
		ID:                 d.ID,
		QuotationID:        d.QuotationID,
		QuotationNumber:    d.Header.QuotationNumber,
		ClientName:         d.Header.ClientName,
		ClientEmail:        d.Header.ClientEmail,
		ClientPhone:        d.Header.ClientPhone,
		ClientAddress:      d.Header.ClientAddress,
		ProjectName:        d.Header.ProjectName,
		ProjectDescription: d.Header.ProjectDescription,
		IssueDate:          d.Header.IssueDate,
		ValidUntil:         d.Header.ValidUntil,
		Status:             d.Header.Status,
		Notes:              d.Header.Notes,
		Terms:              d.Header.Terms,
		Tax:                d.Tax,
		Discount:           d.Discount,
		Subtotal:           totals.Subtotal,
		TaxAmount:          totals.TaxAmount,
		DiscountAmount:     totals.DiscountAmount,
		Total:              totals.Total,
		TotalDisplay:       quotation.FormatRupiah(totals.Total),
		Selection:          SelectionResponse{Section: handleString(sel.Section), Group: handleString(sel.Group)},
		Sections:           []SectionResponse{},
		Items:              []ItemResponse{},
	}
	for _, s := range d.Sections() {
		sr := SectionResponse{
			Handle:      s.Handle.String(),
			ServerID:    s.ServerID,
			Name:        s.Name,
			Date:        s.Date,
			Description: s.Description,
			Subtotal:    s.Subtotal,
			Groups:      []GroupResponse{},
		}
		for _, g := range d.GroupsOf(s.Handle) {
			gr := GroupResponse{
				Handle:      g.Handle.String(),
				ServerID:    g.ServerID,
				Name:        g.Name,
				Description: g.Description,
				Total:       g.Total,
				Items:       []ItemResponse{},
			}
			for _, it := range d.ItemsOf(g.Handle) {
				gr.Items = append(gr.Items, toItemResponse(it))
			}
			sr.Groups = append(sr.Groups, gr)
		}
		resp.Sections = append(resp.Sections, sr)
	}
	for _, it := range d.StandaloneItems() {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	return resp
}

func toItemResponse(it quotation.Item) ItemResponse {
	return ItemResponse{
		Handle:      it.Handle.String(),
		ServerID:    it.ServerID,
		EquipmentID: it.EquipmentID,
		Equipment:   it.Equipment,
		ItemName:    it.ItemName,
		Description: it.Description,
		Quantity:    it.Quantity,
		Unit:        it.Unit,
		PricePerDay: it.PricePerDay,
		Days:        it.Days,
		Total:       it.Total,
		Type:        it.Type,
		Remarks:     it.Remarks,
	}
}

func handleString(h quotation.Handle) string {
	if h.IsZero() {
		return ""
	}
	return h.String()
}
