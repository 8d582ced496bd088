// Package format renders numbers for display with English digit grouping.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if amount < 0 {
		return "-$" + NumericCurrency(math.Abs(amount))
	}
	return "$" + NumericCurrency(amount)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return message.NewPrinter(language.English).Sprintf("%.2f", amount)
}

// Percent formats an already-scaled percentage, e.g. 44.04 as "44.04%".
func Percent(value float64, places int) string {
	return message.NewPrinter(language.English).Sprintf(fmt.Sprintf("%%.%df%%%%", places), value)
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
