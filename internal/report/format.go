// Package report renders records as CSV and spreadsheet exports.
package report

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"daara/internal/core"
)

const currency = "FCFA"

var printer = message.NewPrinter(language.French)

// FormatAmount renders m with French digit grouping, e.g. "24 000 FCFA".
func FormatAmount(m core.Money) string {
	return printer.Sprintf("%v %s", number.Decimal(m.Units(), number.MaxFractionDigits(2)), currency)
}

// FormatTime renders a record timestamp as dd/mm/yyyy hh:mm, or "N/A".
func FormatTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("02/01/2006 15:04")
}
