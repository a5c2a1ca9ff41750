// Package normalize converts issuer-formatted amount and date substrings
// into canonical values.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDateFormats is the candidate list ParseDate tries when the
// caller passes none: numeric month/day/year with 2- and 4-digit years,
// ISO dates, and long-form month names.
var DefaultDateFormats = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseAmount converts an issuer-formatted amount string into a decimal.
// Currency symbols, digit-group separators, and surrounding whitespace
// are stripped; a value wrapped in parentheses is negative. Unparsable
// input yields zero, never an error - callers decide whether a zero
// amount is meaningful.
func ParseAmount(s string) decimal.Decimal {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.NewReplacer("$", "", ",", "", " ", "", " ", "").Replace(cleaned)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// Invert flips an amount's sign. Used by issuers whose statements print
// charges as positive magnitudes that must be recorded as negative
// debits.
func Invert(d decimal.Decimal) decimal.Decimal {
	return d.Neg()
}

// ParseDate tries each candidate layout in order and returns the first
// successful parse. The second return value is false when every layout
// fails. A nil or empty layouts slice means DefaultDateFormats.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	if len(layouts) == 0 {
		layouts = DefaultDateFormats
	}
	trimmed := strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
