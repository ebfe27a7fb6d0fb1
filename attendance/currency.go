package attendance

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySuffix is the won sign used in pay labels.
const CurrencySuffix = "원"

var koPrinter = message.NewPrinter(language.Korean)

// FormatCurrency renders an amount with Korean digit grouping and at most
// three fraction digits, e.g. "22,500원".
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(3)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	abs := rounded.Abs()

	// The integer part goes through the locale printer; the fraction is
	// taken from the decimal so no float conversion is involved.
	whole := abs.Truncate(0)
	grouped := koPrinter.Sprintf("%d", whole.IntPart())

	if frac := abs.Sub(whole); !frac.IsZero() {
		_, digits, _ := strings.Cut(frac.String(), ".")
		grouped += "." + digits
	}
	return sign + grouped + CurrencySuffix
}
