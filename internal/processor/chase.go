package processor

import (
	"regexp"

	"github.com/dvloznov/statement-extractor/internal/domain"
)

// NewChase builds the processor for Chase checking and savings
// statements. Chase prints the account digits on the product line
// ("CHASE TOTAL CHECKING ... 1234") but the section banner elsewhere
// ("CHECKING SUMMARY"), so capture and emit markers differ.
func NewChase() Processor {
	fourDigits := regexp.MustCompile(`\d{4}\b`)

	return &issuer{
		desc: domain.IssuerDescriptor{
			Name:         "Chase Bank",
			Code:         "CHASE",
			AccountKinds: []domain.AccountKind{domain.AccountChecking, domain.AccountSavings},
		},
		detectMarkers: []string{
			"CHASE",
			"JPMORGAN CHASE",
			"CHASE TOTAL CHECKING",
			"CHASE SAVINGS",
		},
		rules: ruleset{
			sections: []sectionRule{
				{
					captureMarkers: []string{"CHASE TOTAL CHECKING"},
					emitMarkers:    []string{"CHECKING SUMMARY"},
					digits:         fourDigits,
					headerFmt:      "=== Chase Checking Account(%s) ===",
					headerBare:     "=== Chase Checking Account ===",
				},
				{
					captureMarkers: []string{"CHASE SAVINGS"},
					emitMarkers:    []string{"SAVINGS SUMMARY"},
					digits:         fourDigits,
					headerFmt:      "=== Chase Savings Account(%s) ===",
					headerBare:     "=== Chase Savings Account ===",
				},
			},
			detailStarts: []string{"TRANSACTION DETAIL"},
			haltMarkers: []string{
				"*START*DRE PORTRAIT DISCLOSURE MESSAGE AREA",
				"*START*POST OVERDRAFT AND RETURNED",
			},
			noise: []string{
				"BEGINNING BALANCE",
				"ENDING BALANCE",
			},
			datePattern:          regexp.MustCompile(`\d{2}/\d{2}`),
			amountPattern:        regexp.MustCompile(`[-]?\$?[\d,]+\.\d{2}`),
			minContinuationWords: 2,
		},
		meta: metadataRules{
			accountMarkers: []string{"CHASE TOTAL CHECKING", "CHASE SAVINGS"},
			accountDigits:  fourDigits,
			kinds: []kindRule{
				{marker: "CHASE TOTAL CHECKING", kind: domain.AccountChecking},
				{marker: "CHASE SAVINGS", kind: domain.AccountSavings},
			},
			defaultKind:    domain.AccountChecking,
			openingMarkers: []string{"BEGINNING BALANCE"},
			closingMarkers: []string{"ENDING BALANCE"},
		},
		dateLayouts: []string{"01/02/2006"},
		yearless:    true,
	}
}
