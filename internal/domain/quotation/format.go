package quotation

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount the way invoices show it, e.g. "Rp 1.234.567,5"
func FormatRupiah(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "Rp " + rupiahPrinter.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}
