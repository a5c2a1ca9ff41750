package processor

import (
	"regexp"
	"strings"
	"testing"

	"github.com/dvloznov/statement-extractor/internal/domain"
)

func testRules() ruleset {
	return ruleset{
		sections: []sectionRule{
			{
				captureMarkers: []string{"ACCOUNT NUMBER:"},
				emitMarkers:    []string{"ACCOUNT NUMBER:"},
				digits:         regexp.MustCompile(`\d{4}`),
				headerFmt:      "=== Test Account(%s) ===",
				headerBare:     "=== Test Account ===",
			},
		},
		detailStarts:         []string{"TRANSACTION DETAIL"},
		detailStops:          []string{"TOTAL "},
		haltMarkers:          []string{"DISCLOSURES"},
		noise:                []string{"PAGE "},
		datePattern:          regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
		amountPattern:        regexp.MustCompile(`[-]?\$?[\d,]+\.\d{2}`),
		minContinuationWords: 3,
	}
}

func cleanWith(rules ruleset, lines ...string) []domain.CleanedLine {
	return runMachine(rules, strings.Join(lines, "\n"))
}

func transactionTexts(lines []domain.CleanedLine) []string {
	var out []string
	for _, l := range lines {
		if !l.IsHeader {
			out = append(out, l.Text)
		}
	}
	return out
}

func TestMachineMergesContinuationLines(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"merchant reference and location details",
		"01/07/2024 DEPOSIT 200.00",
	)

	txns := transactionTexts(got)
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2: %v", len(txns), txns)
	}
	want := "01/05/2024 CARD PURCHASE -54.12 merchant reference and location details"
	if txns[0] != want {
		t.Errorf("merged transaction = %q, want %q", txns[0], want)
	}
}

// A line carrying both a date and an amount token always starts a new
// transaction, even immediately after a long continuation line.
func TestMachineTieBreakDateAmountWins(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"one two three four five six seven eight nine ten",
		"01/06/2024 ANOTHER PURCHASE WITH A VERY LONG DESCRIPTION LINE -10.00",
	)

	txns := transactionTexts(got)
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2: %v", len(txns), txns)
	}
	if !strings.HasPrefix(txns[1], "01/06/2024") {
		t.Errorf("second transaction = %q, want a fresh 01/06/2024 entry", txns[1])
	}
}

// Word count alone never starts a transaction: long lines before any
// date+amount line are dropped, not accumulated.
func TestMachineLongLineWithoutCurrentIsDropped(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"one two three four five six seven eight nine ten",
		"01/05/2024 CARD PURCHASE -54.12",
	)

	txns := transactionTexts(got)
	if len(txns) != 1 || txns[0] != "01/05/2024 CARD PURCHASE -54.12" {
		t.Fatalf("got %v, want only the dated transaction", txns)
	}
}

func TestMachineShortLineFlushesCurrent(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"stray mark",
		"more words that would continue a transaction",
	)

	txns := transactionTexts(got)
	// The two-word line flushes the open transaction; the later long
	// line has nothing to continue.
	if len(txns) != 1 || txns[0] != "01/05/2024 CARD PURCHASE -54.12" {
		t.Fatalf("got %v, want only the flushed transaction", txns)
	}
}

func TestMachineStopMarkerFlushesAndResumesScanning(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"Total withdrawals $54.12",
		"01/06/2024 IGNORED OUTSIDE DETAIL -1.00",
		"TRANSACTION DETAIL",
		"01/07/2024 DEPOSIT 200.00",
	)

	txns := transactionTexts(got)
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2: %v", len(txns), txns)
	}
	if txns[1] != "01/07/2024 DEPOSIT 200.00" {
		t.Errorf("second transaction = %q", txns[1])
	}
}

func TestMachineHaltMarkerStopsProcessing(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"DISCLOSURES",
		"TRANSACTION DETAIL",
		"01/06/2024 NEVER SEEN -1.00",
	)

	txns := transactionTexts(got)
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1: %v", len(txns), txns)
	}
}

func TestMachineEndOfInputFlushesInProgress(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"merchant reference and location details",
	)

	txns := transactionTexts(got)
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1: %v", len(txns), txns)
	}
}

func TestMachineHeaderDeduplicated(t *testing.T) {
	got := cleanWith(testRules(),
		"Account number: 0000 1234",
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"Account number: 0000 1234",
		"01/06/2024 DEPOSIT 200.00",
	)

	headers := 0
	for _, l := range got {
		if l.IsHeader {
			headers++
			if l.Text != "=== Test Account(1234) ===" {
				t.Errorf("header = %q", l.Text)
			}
		}
	}
	if headers != 1 {
		t.Errorf("got %d headers, want 1", headers)
	}
	if txns := transactionTexts(got); len(txns) != 2 {
		t.Errorf("got %d transactions, want 2: %v", len(txns), txns)
	}
}

func TestMachineNoiseLinesConsumed(t *testing.T) {
	got := cleanWith(testRules(),
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"Page 2 of 6 statement continues with further descriptive words",
	)

	txns := transactionTexts(got)
	if len(txns) != 1 || txns[0] != "01/05/2024 CARD PURCHASE -54.12" {
		t.Fatalf("noise line leaked into output: %v", txns)
	}
}

func TestMachineDeterministic(t *testing.T) {
	lines := []string{
		"Account number: 0000 1234",
		"TRANSACTION DETAIL",
		"01/05/2024 CARD PURCHASE -54.12",
		"merchant reference and location details",
		"Total withdrawals $54.12",
	}
	first := cleanWith(testRules(), lines...)
	second := cleanWith(testRules(), lines...)
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("line %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
