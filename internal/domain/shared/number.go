package shared

import "github.com/shopspring/decimal"

// Number is a decimal that marshals as a bare JSON number.
// The rental backend expects numeric fields, not quoted decimals.
type Number struct {
	decimal.Decimal
}

// NewNumber wraps a decimal
func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}
