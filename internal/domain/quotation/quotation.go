package quotation

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Quotation is a persisted quotation as returned by the rental backend
type Quotation struct {
	ID                 int64           `json:"id"`
	QuotationNumber    string          `json:"quotationNumber"`
	ClientName         string          `json:"clientName"`
	ClientEmail        string          `json:"clientEmail,omitempty"`
	ClientPhone        string          `json:"clientPhone,omitempty"`
	ClientAddress      string          `json:"clientAddress,omitempty"`
	ProjectName        string          `json:"projectName,omitempty"`
	ProjectDescription string          `json:"projectDescription,omitempty"`
	IssueDate          string          `json:"issueDate"`
	ValidUntil         string          `json:"validUntil,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total"`
	Status             Status          `json:"status"`
	Notes              string          `json:"notes,omitempty"`
	Terms              string          `json:"terms,omitempty"`
	Sections           []SectionRecord `json:"sections,omitempty"`
	Items              []ItemRecord    `json:"items,omitempty"`
	CreatedAt          *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time      `json:"updatedAt,omitempty"`
}

// SectionRecord is a persisted section
type SectionRecord struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Groups      []GroupRecord   `json:"groups,omitempty"`
}

// GroupRecord is a persisted item group
type GroupRecord struct {
	ID          int64           `json:"id"`
	SectionID   int64           `json:"sectionId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Items       []ItemRecord    `json:"items,omitempty"`
}

// ItemRecord is a persisted line item
type ItemRecord struct {
	ID          int64              `json:"id"`
	SectionID   *int64             `json:"sectionId,omitempty"`
	GroupID     *int64             `json:"groupId,omitempty"`
	EquipmentID *int64             `json:"equipmentId,omitempty"`
	Equipment   *EquipmentSnapshot `json:"equipment,omitempty"`
	ItemName    string             `json:"itemName"`
	Description string             `json:"description,omitempty"`
	Quantity    int                `json:"quantity"`
	Unit        string             `json:"unit,omitempty"`
	PricePerDay decimal.Decimal    `json:"pricePerDay"`
	Days        int                `json:"days"`
	Total       decimal.Decimal    `json:"total"`
	Type        ItemType           `json:"type,omitempty"`
	Remarks     string             `json:"remarks,omitempty"`
}

// Filter narrows a quotation list
type Filter struct {
	Status     Status `form:"status"`
	Search     string `form:"search"`
	ClientName string `form:"clientName"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Sort       string `form:"sort"`
	Order      string `form:"order"`
}

// Values encodes the non-empty filter fields as query parameters
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	setIf(v, "search", f.Search)
	setIf(v, "status", string(f.Status))
	setIf(v, "clientName", f.ClientName)
	setIf(v, "startDate", f.StartDate)
	setIf(v, "endDate", f.EndDate)
	setIf(v, "sort", f.Sort)
	setIf(v, "order", f.Order)
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// ExportFormat selects the document format of an export
type ExportFormat string

const (
	ExportPDF   ExportFormat = "pdf"
	ExportExcel ExportFormat = "excel"
)

// IsValid checks the export format is supported
func (f ExportFormat) IsValid() bool {
	return f == ExportPDF || f == ExportExcel
}

// Extension returns the file extension for exported documents
func (f ExportFormat) Extension() string {
	if f == ExportExcel {
		return "xlsx"
	}
	return "pdf"
}

// ContentType returns the MIME type of exported documents
func (f ExportFormat) ContentType() string {
	if f == ExportExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Document is an exported quotation file
type Document struct {
	QuotationID int64
	Format      ExportFormat
	ContentType string
	Filename    string
	Content     []byte
}
