package processor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/statement-extractor/internal/domain"
	"github.com/dvloznov/statement-extractor/internal/normalize"
)

// scanState is the explicit state of the line-oriented cleaning machine.
type scanState int

const (
	stateScanning scanState = iota // outside any transaction-detail region
	stateInDetail                  // inside a transaction-detail region
	stateDone                      // trailing boilerplate reached, input ignored
)

// sectionRule describes how an account-section header is recognized and
// emitted. Capture markers scrape the account digits from a line; emit
// markers trigger writing the header into the output stream. For most
// issuers both marker sets are the same line; Chase prints the digits in
// one place and the section banner in another.
type sectionRule struct {
	captureMarkers []string
	emitMarkers    []string
	digits         *regexp.Regexp
	headerFmt      string // with %s placeholder for the digits
	headerBare     string // used when no digits were captured
}

// ruleset is the per-issuer vocabulary driving the cleaning machine.
// All markers are matched case-insensitively as substrings.
type ruleset struct {
	sections     []sectionRule
	detailStarts []string // enter the detail region
	detailStops  []string // leave the detail region, resume scanning
	haltMarkers  []string // stop processing entirely
	noise        []string // keyword lines consumed inside the detail region

	datePattern   *regexp.Regexp
	amountPattern *regexp.Regexp

	// minimum word count for a line without date/amount tokens to be
	// treated as a continuation of the in-progress transaction
	minContinuationWords int

	// negate every matched amount at clean time (credit-card issuers
	// that print charges as positive magnitudes)
	invertAmounts bool

	// optional issuer-specific rewrite applied to a freshly started
	// transaction line
	postMatch func(string) string
}

// machine runs one cleaning pass. It is single-use: feed lines with
// step, then collect the output with finish.
type machine struct {
	rules    ruleset
	state    scanState
	current  string // in-progress merged transaction line
	captured []string
	emitted  map[string]bool
	out      []domain.CleanedLine
}

func newMachine(rules ruleset) *machine {
	return &machine{
		rules:    rules,
		state:    stateScanning,
		captured: make([]string, len(rules.sections)),
		emitted:  make(map[string]bool),
	}
}

// step consumes one raw statement line and advances the machine.
func (m *machine) step(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || m.state == stateDone {
		return
	}
	upper := strings.ToUpper(line)

	for i := range m.rules.sections {
		rule := &m.rules.sections[i]
		if containsAny(upper, rule.captureMarkers) {
			if d := lastMatch(rule.digits, line); d != "" {
				m.captured[i] = d
			}
		}
		if containsAny(upper, rule.emitMarkers) {
			m.emitHeader(i)
			return
		}
	}

	if containsAny(upper, m.rules.haltMarkers) {
		m.flush()
		m.state = stateDone
		return
	}
	if containsAny(upper, m.rules.detailStops) {
		m.flush()
		m.state = stateScanning
		return
	}
	if containsAny(upper, m.rules.detailStarts) {
		m.state = stateInDetail
		return
	}
	if m.state != stateInDetail {
		return
	}
	if containsAny(upper, m.rules.noise) {
		return
	}

	// A line is a new transaction if and only if it carries both a
	// date-like and an amount-like token. Word count alone never
	// starts one.
	if m.rules.datePattern.MatchString(line) && m.rules.amountPattern.MatchString(line) {
		m.flush()
		if m.rules.invertAmounts {
			line = m.invertLineAmount(line)
		}
		if m.rules.postMatch != nil {
			line = m.rules.postMatch(line)
		}
		m.current = line
		return
	}

	if m.current == "" {
		return
	}
	if len(strings.Fields(line)) > m.rules.minContinuationWords {
		m.current += " " + line
	} else {
		m.flush()
	}
}

// finish flushes any in-progress transaction and returns the stream.
func (m *machine) finish() []domain.CleanedLine {
	m.flush()
	return m.out
}

func (m *machine) flush() {
	if m.current == "" {
		return
	}
	m.out = append(m.out, domain.TransactionLine(m.current))
	m.current = ""
}

// emitHeader writes the section header for rule i, at most once per run
// per header text.
func (m *machine) emitHeader(i int) {
	rule := &m.rules.sections[i]
	header := rule.headerBare
	if m.captured[i] != "" {
		header = fmt.Sprintf(rule.headerFmt, m.captured[i])
	}
	if m.emitted[header] {
		return
	}
	m.emitted[header] = true
	m.flush()
	m.out = append(m.out, domain.HeaderLine(header))
}

// invertLineAmount negates the first amount token in place, rendering it
// with an explicit sign so downstream parsing keeps the canonical
// convention.
func (m *machine) invertLineAmount(line string) string {
	loc := m.rules.amountPattern.FindStringIndex(line)
	if loc == nil {
		return line
	}
	inverted := normalize.Invert(normalize.ParseAmount(line[loc[0]:loc[1]]))
	formatted := inverted.StringFixed(2)
	if inverted.Sign() > 0 {
		formatted = "+" + formatted
	}
	return line[:loc[0]] + formatted + line[loc[1]:]
}

// runMachine cleans a whole statement body with the given ruleset.
func runMachine(rules ruleset, text string) []domain.CleanedLine {
	m := newMachine(rules)
	for _, line := range strings.Split(text, "\n") {
		m.step(line)
	}
	return m.finish()
}

func containsAny(upper string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// lastMatch returns the last match of re in line, or "" when none.
func lastMatch(re *regexp.Regexp, line string) string {
	all := re.FindAllString(line, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}
