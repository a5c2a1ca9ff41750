package processor

import (
	"fmt"
	"regexp"

	"github.com/dvloznov/statement-extractor/internal/domain"
	"github.com/dvloznov/statement-extractor/internal/normalize"
)

// amexInterestLine matches the interest-rate rows of the rate summary
// table ("Purchases 05/12/24 -19.99% ... $12.34"), which would otherwise
// be emitted with the whole rate table as description.
var amexInterestLine = regexp.MustCompile(
	`^(Purchases|Cash Advances)\s+(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+[-+]?\d+(?:\.\d+)?%.*?\$?([\d,]+\.\d{2})\s*$`)

// NewAmex builds the processor for American Express credit card
// statements. Amex prints charges as positive magnitudes, so every
// detail-line amount is inverted at clean time to keep the canonical
// sign convention (charges negative, payments positive).
func NewAmex() Processor {
	fiveDigits := regexp.MustCompile(`\d{5}`)

	return &issuer{
		desc: domain.IssuerDescriptor{
			Name:         "American Express",
			Code:         "AMEX",
			AccountKinds: []domain.AccountKind{domain.AccountCredit},
		},
		detectMarkers: []string{
			"AMERICAN EXPRESS",
			"AMEX",
			"ACCOUNT ENDING",
		},
		rules: ruleset{
			sections: []sectionRule{
				{
					captureMarkers: []string{"ACCOUNT ENDING"},
					emitMarkers:    []string{"ACCOUNT ENDING"},
					digits:         fiveDigits,
					headerFmt:      "=== American Express Credit Card(%s) ===",
					headerBare:     "=== American Express Credit Card ===",
				},
			},
			detailStarts: []string{
				"FEES",
				"TOTAL PAYMENTS AND CREDITS",
				"DETAIL",
				"TO RATE INTEREST RATE",
			},
			detailStops: []string{
				"ABOUT TRAILING INTEREST",
				"CONTINUED ON REVERSE",
				"CONTINUED ON NEXT PAGE",
			},
			noise: []string{
				"DATE",
				"DESCRIPTION",
				"AMOUNT",
				"BEGINNING BALANCE ON",
				"DEPOSITS AND OTHER ADDITIONS",
				"NEW CHARGES SUMMARY",
				"NEW CHARGES",
				"SUMMARY",
			},
			datePattern:          regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`),
			amountPattern:        regexp.MustCompile(`[-+]?\$?[\d,]+\.\d{2}`),
			minContinuationWords: 3,
			invertAmounts:        true,
			postMatch:            rewriteAmexInterestLine,
		},
		meta: metadataRules{
			accountMarkers: []string{"ACCOUNT ENDING"},
			accountDigits:  fiveDigits,
			defaultKind:    domain.AccountCredit,
			openingMarkers: []string{"PREVIOUS BALANCE"},
			closingMarkers: []string{"NEW BALANCE"},
		},
		dateLayouts: []string{"01/02/2006", "01/02/06", "1/2/2006", "1/2/06"},
		yearless:    true,
	}
}

// rewriteAmexInterestLine collapses a matched rate-table row into a
// plain transaction line carrying the interest charge.
func rewriteAmexInterestLine(line string) string {
	m := amexInterestLine.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	charge := normalize.Invert(normalize.ParseAmount(m[3]))
	formatted := charge.StringFixed(2)
	if charge.Sign() > 0 {
		formatted = "+" + formatted
	}
	return fmt.Sprintf("%s  %s Interest Rate  %s", m[2], m[1], formatted)
}
