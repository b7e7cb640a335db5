// Package format renders amounts the way the club prints them: Hungarian
// digit grouping, forints without decimals.
package format

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Hungarian)

// Chips groups an integer by thousands, e.g. 30000 -> "30 000".
func Chips(n int64) string {
	return normalizeSpaces(printer.Sprintf("%d", n))
}

// HUF formats a forint amount, e.g. 15000 -> "15 000 Ft".
func HUF(amount int64) string {
	return Chips(amount) + " Ft"
}

// normalizeSpaces replaces the CLDR group separator (a no-break space of
// either width) with a plain space so output is stable across x/text
// releases.
func normalizeSpaces(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}
