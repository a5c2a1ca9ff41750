// Package processor implements per-issuer statement cleaning: detecting
// which institution a statement came from, isolating its transaction
// detail regions, and merging multi-line entries into a normalized line
// stream ready for batching and structured extraction.
package processor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/statement-extractor/internal/domain"
	"github.com/dvloznov/statement-extractor/internal/normalize"
)

// ErrUnrecognizedIssuer is returned by Process when the statement text
// does not match the processor's issuer markers.
var ErrUnrecognizedIssuer = errors.New("unrecognized issuer")

// Processor handles one issuer/account-type family.
type Processor interface {
	// Descriptor identifies the issuer this processor handles.
	Descriptor() domain.IssuerDescriptor

	// Detect reports whether the statement text belongs to this issuer.
	// It is a cheap single-pass keyword match; the registry calls it
	// against every registered processor until one returns true.
	Detect(text string) bool

	// Clean runs the issuer's cleaning state machine and returns the
	// normalized line stream with embedded section headers.
	Clean(text string) []domain.CleanedLine

	// ExtractMetadata scans the statement text for account-identifier
	// and balance markers. First match wins per field. The scan runs
	// over the pre-clean text because the cleaning machine consumes
	// balance-summary lines as region markers.
	ExtractMetadata(text string) domain.StatementMetadata

	// ExtractTransactions parses date and amount tokens out of the
	// cleaned lines, treating the remainder as description. Malformed
	// lines are skipped, never fatal.
	ExtractTransactions(lines []domain.CleanedLine) []domain.Transaction

	// Process runs detect, clean, metadata and transaction extraction
	// and assembles the outcome. It fails with ErrUnrecognizedIssuer
	// when Detect returns false.
	Process(text string) (*domain.Outcome, error)
}

// kindRule maps a statement marker to an account kind.
type kindRule struct {
	marker string
	kind   domain.AccountKind
}

// metadataRules is the per-issuer vocabulary for metadata extraction.
type metadataRules struct {
	accountMarkers []string
	accountDigits  *regexp.Regexp
	kinds          []kindRule
	defaultKind    domain.AccountKind
	openingMarkers []string
	closingMarkers []string
}

var balancePattern = regexp.MustCompile(`\$?([\d,]+\.\d{2})`)

// issuer is the shared rule-table-driven Processor implementation. Each
// issuer constructor supplies its marker vocabulary, patterns and sign
// convention.
type issuer struct {
	desc          domain.IssuerDescriptor
	detectMarkers []string // uppercase
	rules         ruleset
	meta          metadataRules
	dateLayouts   []string
	yearless      bool // dates printed without a year (MM/DD)
}

func (p *issuer) Descriptor() domain.IssuerDescriptor { return p.desc }

func (p *issuer) Detect(text string) bool {
	upper := strings.ToUpper(text)
	for _, marker := range p.detectMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func (p *issuer) Clean(text string) []domain.CleanedLine {
	return runMachine(p.rules, text)
}

func (p *issuer) ExtractMetadata(text string) domain.StatementMetadata {
	meta := domain.StatementMetadata{AccountKind: p.meta.defaultKind}
	kindSeen, openingSeen, closingSeen := false, false, false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		if meta.AccountLastDigits == "" && containsAny(upper, p.meta.accountMarkers) {
			if d := lastMatch(p.meta.accountDigits, line); d != "" {
				meta.AccountLastDigits = d
			}
		}
		if !kindSeen {
			for _, k := range p.meta.kinds {
				if strings.Contains(upper, k.marker) {
					meta.AccountKind = k.kind
					kindSeen = true
					break
				}
			}
		}
		if !openingSeen && containsAny(upper, p.meta.openingMarkers) {
			if m := balancePattern.FindStringSubmatch(line); m != nil {
				meta.OpeningBalance = normalize.ParseAmount(m[1])
				openingSeen = true
			}
		}
		if !closingSeen && containsAny(upper, p.meta.closingMarkers) {
			if m := balancePattern.FindStringSubmatch(line); m != nil {
				meta.ClosingBalance = normalize.ParseAmount(m[1])
				closingSeen = true
			}
		}
	}
	return meta
}

func (p *issuer) ExtractTransactions(lines []domain.CleanedLine) []domain.Transaction {
	var out []domain.Transaction
	year := time.Now().Year()

	for _, cl := range lines {
		if cl.IsHeader {
			continue
		}
		dateToken := p.rules.datePattern.FindString(cl.Text)
		if dateToken == "" {
			continue
		}
		amountToken := p.rules.amountPattern.FindString(cl.Text)
		if amountToken == "" {
			continue
		}

		dateStr := dateToken
		if p.yearless && strings.Count(dateToken, "/") == 1 {
			dateStr = dateToken + "/" + strconv.Itoa(year)
		}
		date, ok := normalize.ParseDate(dateStr, p.dateLayouts)
		if !ok {
			continue
		}

		desc := strings.Replace(cl.Text, dateToken, "", 1)
		desc = strings.Replace(desc, amountToken, "", 1)
		desc = strings.Join(strings.Fields(desc), " ")

		out = append(out, domain.Transaction{
			Date:        date,
			Description: desc,
			Amount:      normalize.ParseAmount(amountToken),
		})
	}
	return out
}

func (p *issuer) Process(text string) (*domain.Outcome, error) {
	if !p.Detect(text) {
		return nil, fmt.Errorf("%w: statement is not from %s", ErrUnrecognizedIssuer, p.desc.Name)
	}

	cleaned := p.Clean(text)
	return &domain.Outcome{
		Issuer:       p.desc,
		Metadata:     p.ExtractMetadata(text),
		Transactions: p.ExtractTransactions(cleaned),
		ProcessedAt:  time.Now().UTC(),
	}, nil
}
