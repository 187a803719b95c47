package i18n

import (
	"math"

	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Dinar amounts carry three decimals (millimes).
const currencyScale = 3

// CurrencySymbol is the TND suffix for the locale.
func (l Locale) CurrencySymbol() string {
	if l == Tunisian {
		return "د.ت"
	}
	return "DT"
}

// FormatAmount renders v as Tunisian dinars with locale grouping,
// e.g. "1,234.500 DT" in English or "1 234,500 DT" in French.
func (p Preferences) FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	printer := message.NewPrinter(p.Locale.Tag())
	return printer.Sprint(number.Decimal(v, number.Scale(currencyScale))) + " " + p.Locale.CurrencySymbol()
}

// FormatPercent renders a one-decimal share, e.g. "47.4%".
func (p Preferences) FormatPercent(v float64) string {
	printer := message.NewPrinter(p.Locale.Tag())
	return printer.Sprint(number.Decimal(v, number.Scale(1))) + "%"
}
