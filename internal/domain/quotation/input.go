package quotation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// AddSectionInput holds the fields of a new section
type AddSectionInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=2000"`
}

// AddGroupInput holds the fields of a new group
type AddGroupInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// AddItemInput holds the fields of a new line item. Nil fields fall back to
// the equipment defaults, then to the item defaults.
type AddItemInput struct {
	EquipmentID *int64           `json:"equipmentId" validate:"omitempty,gt=0"`
	ItemName    string           `json:"itemName" validate:"max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gt=0"`
	Unit        string           `json:"unit" validate:"max=50"`
	PricePerDay *decimal.Decimal `json:"pricePerDay" validate:"omitempty,gte=0"`
	Days        *int             `json:"days" validate:"omitempty,gt=0"`
	Type        ItemType         `json:"type" validate:"omitempty,oneof=rental service sale"`
	Remarks     string           `json:"remarks" validate:"max=2000"`
}

// HeaderInput replaces the document-level fields of a draft
type HeaderInput struct {
	QuotationNumber    string `json:"quotationNumber" validate:"required,max=50"`
	ClientName         string `json:"clientName" validate:"required,max=200"`
	ClientEmail        string `json:"clientEmail" validate:"omitempty,email"`
	ClientPhone        string `json:"clientPhone" validate:"max=50"`
	ClientAddress      string `json:"clientAddress" validate:"max=500"`
	ProjectName        string `json:"projectName" validate:"max=200"`
	ProjectDescription string `json:"projectDescription" validate:"max=2000"`
	IssueDate          string `json:"issueDate" validate:"required,datetime=2006-01-02"`
	ValidUntil         string `json:"validUntil" validate:"omitempty,datetime=2006-01-02"`
	Status             Status `json:"status" validate:"omitempty,oneof=draft sent approved rejected converted_to_do converted_to_invoice"`
	Notes              string `json:"notes" validate:"max=5000"`
	Terms              string `json:"terms" validate:"max=5000"`
}

// RatesInput sets the tax and discount percentages
type RatesInput struct {
	Tax      decimal.Decimal `json:"tax" validate:"gte=0,lte=100"`
	Discount decimal.Decimal `json:"discount" validate:"gte=0,lte=100"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Compare decimals numerically in gte/lte/gt tags
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks a struct against its validate tags and reports the first
// failures as an INVALID_INPUT domain error
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.WrapDomainError("INVALID_INPUT", "Invalid input provided", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return shared.WrapDomainError("INVALID_INPUT", strings.Join(msgs, "; "), err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "lte":
		return fe.Field() + " must be at most " + fe.Param()
	case "max":
		return fe.Field() + " is too long"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email"
	default:
		return fe.Field() + " is invalid"
	}
}
