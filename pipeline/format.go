// ABOUTME: Currency and percentage formatting for pipeline figures
// ABOUTME: Renders whole-dollar amounts with grouping and one-decimal percentages
package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders whole US dollars: 12345.6 becomes "$12,346".
func FormatCurrency(amount decimal.Decimal) string {
	whole := amount.Round(0).IntPart()
	if whole < 0 {
		return printer.Sprintf("-$%d", -whole)
	}
	return printer.Sprintf("$%d", whole)
}

// FormatPercent renders a percentage to one decimal place: "50.0%".
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}
