// internal/utils/currency.go
package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Guaraní amounts are whole units grouped with dots.
var currencyPrinter = message.NewPrinter(language.Spanish)

// FormatCurrency renders an amount as "Gs. 1.500.000".
func FormatCurrency(amount int64) string {
	return currencyPrinter.Sprintf("Gs. %d", amount)
}
