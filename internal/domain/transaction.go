package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one normalized transaction record.
// Amounts follow the canonical sign convention: debits and charges are
// negative, credits and deposits are positive, regardless of how the
// issuer prints them on paper.
type Transaction struct {
	Date        time.Time       // transaction date
	Description string          // merchant / narrative text
	Amount      decimal.Decimal // signed, two decimal places
	Balance     decimal.Decimal // running balance; zero when the statement omits it
	Category    string          // optional, assigned by the extraction service
}

// AmountString renders the amount with two fractional digits.
func (t Transaction) AmountString() string {
	return t.Amount.StringFixed(2)
}
