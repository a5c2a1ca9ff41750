package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind classifies the primary account of a statement.
type AccountKind string

const (
	AccountChecking AccountKind = "checking"
	AccountSavings  AccountKind = "savings"
	AccountCredit   AccountKind = "credit"
)

// IssuerDescriptor identifies a financial institution whose statement
// format the system recognizes. One descriptor per registered processor,
// immutable for the process lifetime.
type IssuerDescriptor struct {
	Name         string        // display name, e.g. "Bank of America"
	Code         string        // short code, e.g. "BOFA"
	AccountKinds []AccountKind // account kinds this processor handles
}

// CleanedLine is one entry of the normalized line stream produced by an
// issuer processor. IsHeader marks account-section boundaries; header
// entries are not transactions.
type CleanedLine struct {
	Text     string
	IsHeader bool
}

// HeaderLine builds a section-header entry.
func HeaderLine(text string) CleanedLine {
	return CleanedLine{Text: text, IsHeader: true}
}

// TransactionLine builds a transaction-candidate entry.
func TransactionLine(text string) CleanedLine {
	return CleanedLine{Text: text}
}

// Batch is a bounded chunk of cleaned transaction lines dispatched as one
// unit to the extraction service. Header carries the account-section
// context the lines belong to; it is batch metadata, not line content.
type Batch struct {
	Header string   // originating section header, empty when none seen
	Lines  []string // transaction candidate lines, source order
	Index  int      // position in the split sequence
}

// Text renders the batch the way it is embedded into an extraction
// request: header first, then the lines.
func (b Batch) Text() string {
	if b.Header == "" {
		return strings.Join(b.Lines, "\n")
	}
	return b.Header + "\n" + strings.Join(b.Lines, "\n")
}

// StatementPeriod is the optional start/end range a statement covers.
type StatementPeriod struct {
	Start time.Time
	End   time.Time
}

// StatementMetadata holds account-level facts scanned from the
// statement text.
type StatementMetadata struct {
	AccountLastDigits string
	AccountKind       AccountKind
	Period            *StatementPeriod // nil when the statement omits it
	OpeningBalance    decimal.Decimal
	ClosingBalance    decimal.Decimal
}

// Outcome is the artifact of one pipeline invocation, handed to the
// persistence/export collaborators. Transactions preserve source order.
type Outcome struct {
	Issuer       IssuerDescriptor
	Metadata     StatementMetadata
	Transactions []Transaction
	ProcessedAt  time.Time
}
