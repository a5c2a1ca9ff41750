package processor

import (
	"regexp"

	"github.com/dvloznov/statement-extractor/internal/domain"
)

// NewBankOfAmerica builds the processor for Bank of America checking and
// savings statements.
func NewBankOfAmerica() Processor {
	fourDigits := regexp.MustCompile(`\d{4}`)

	return &issuer{
		desc: domain.IssuerDescriptor{
			Name:         "Bank of America",
			Code:         "BOFA",
			AccountKinds: []domain.AccountKind{domain.AccountChecking, domain.AccountSavings},
		},
		detectMarkers: []string{
			"BANK OF AMERICA",
			"BOFA",
			"BANK OF AMERICA, N.A.",
			"ADVANTAGE SAVINGS",
		},
		rules: ruleset{
			sections: []sectionRule{
				{
					captureMarkers: []string{"ACCOUNT NUMBER:"},
					emitMarkers:    []string{"ACCOUNT NUMBER:"},
					digits:         fourDigits,
					headerFmt:      "=== Bank of America Savings Account(%s) ===",
					headerBare:     "=== Bank of America Savings Account ===",
				},
			},
			detailStarts: []string{
				"DEPOSITS AND OTHER ADDITIONS",
				"ATM AND DEBIT CARD SUBTRACTIONS",
				"OTHER SUBTRACTIONS",
				"SERVICE FEES",
			},
			detailStops: []string{
				"TOTAL ",
				"BRAILLE AND LARGE PRINT REQUEST",
			},
			noise: []string{
				"BEGINNING BALANCE ON",
				"ENDING BALANCE ON",
			},
			datePattern:          regexp.MustCompile(`\d{2}/\d{2}/\d{2}`),
			amountPattern:        regexp.MustCompile(`[-]?\$?[\d,]+\.\d{2}`),
			minContinuationWords: 3,
		},
		meta: metadataRules{
			accountMarkers: []string{"ACCOUNT NUMBER"},
			accountDigits:  fourDigits,
			kinds: []kindRule{
				{marker: "ADVANTAGE SAVINGS", kind: domain.AccountSavings},
				{marker: "CHECKING", kind: domain.AccountChecking},
			},
			defaultKind:    domain.AccountSavings,
			openingMarkers: []string{"BEGINNING BALANCE ON"},
			closingMarkers: []string{"ENDING BALANCE ON"},
		},
		dateLayouts: []string{"01/02/06"},
	}
}
