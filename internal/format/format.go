package format

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is used when a language tag cannot be parsed.
const DefaultLang = "it"

// Price formats value with two decimals and the separators of lang.
// Example: Price(1234.5, "it") => "1.234,50"
func Price(value float64, lang string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return printer(lang).Sprintf("%.2f", value)
}

// Euro prefixes the formatted price with the euro sign.
func Euro(value float64, lang string) string {
	return "€ " + Price(value, lang)
}

func printer(lang string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil || tag == language.Und {
		tag = language.Italian
	}
	return message.NewPrinter(tag)
}
