package batch

import (
	"fmt"
	"testing"

	"github.com/dvloznov/statement-extractor/internal/domain"
)

func txnLines(prefix string, n int) []domain.CleanedLine {
	out := make([]domain.CleanedLine, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.TransactionLine(fmt.Sprintf("%s line %d", prefix, i)))
	}
	return out
}

func totalLines(batches []domain.Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Lines)
	}
	return n
}

func TestSplitRespectsMaxSize(t *testing.T) {
	lines := append([]domain.CleanedLine{domain.HeaderLine("=== Account(1111) ===")}, txnLines("a", 7)...)

	batches := Split(lines, 3)

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	wantSizes := []int{3, 3, 1}
	for i, want := range wantSizes {
		if len(batches[i].Lines) != want {
			t.Errorf("batch %d has %d lines, want %d", i, len(batches[i].Lines), want)
		}
	}
	// Overflow batches repeat the section header.
	for i, b := range batches {
		if b.Header != "=== Account(1111) ===" {
			t.Errorf("batch %d header = %q", i, b.Header)
		}
		if b.Index != i {
			t.Errorf("batch %d index = %d", i, b.Index)
		}
	}
	if totalLines(batches) != 7 {
		t.Errorf("line count not conserved: %d", totalLines(batches))
	}
}

func TestSplitHeaderForcesBoundary(t *testing.T) {
	var lines []domain.CleanedLine
	lines = append(lines, domain.HeaderLine("=== Checking(4321) ==="))
	lines = append(lines, txnLines("chk", 5)...)
	lines = append(lines, domain.HeaderLine("=== Savings(9876) ==="))
	lines = append(lines, txnLines("sav", 3)...)

	batches := Split(lines, 150)

	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].Header != "=== Checking(4321) ===" || len(batches[0].Lines) != 5 {
		t.Errorf("batch 0 = %q with %d lines", batches[0].Header, len(batches[0].Lines))
	}
	if batches[1].Header != "=== Savings(9876) ===" || len(batches[1].Lines) != 3 {
		t.Errorf("batch 1 = %q with %d lines", batches[1].Header, len(batches[1].Lines))
	}
	if totalLines(batches) != 8 {
		t.Errorf("line count not conserved: %d", totalLines(batches))
	}
}

func TestSplitLinesBeforeAnyHeader(t *testing.T) {
	lines := append(txnLines("orphan", 2), domain.HeaderLine("=== Account(1) ==="))
	lines = append(lines, txnLines("a", 1)...)

	batches := Split(lines, 150)

	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].Header != "" {
		t.Errorf("orphan batch header = %q, want empty", batches[0].Header)
	}
	if len(batches[0].Lines) != 2 {
		t.Errorf("orphan batch has %d lines, want 2", len(batches[0].Lines))
	}
}

func TestSplitEmptySections(t *testing.T) {
	lines := []domain.CleanedLine{
		domain.HeaderLine("=== Empty(1) ==="),
		domain.HeaderLine("=== NonEmpty(2) ==="),
		domain.TransactionLine("only line"),
	}

	batches := Split(lines, 150)

	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if batches[0].Header != "=== NonEmpty(2) ===" {
		t.Errorf("header = %q", batches[0].Header)
	}
}

func TestSplitNoLines(t *testing.T) {
	if got := Split(nil, 150); got != nil {
		t.Errorf("Split(nil) = %v, want nil", got)
	}
}

func TestSplitZeroMaxSizeUsesDefault(t *testing.T) {
	lines := txnLines("a", DefaultMaxSize+1)
	batches := Split(lines, 0)
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if len(batches[0].Lines) != DefaultMaxSize {
		t.Errorf("batch 0 has %d lines, want %d", len(batches[0].Lines), DefaultMaxSize)
	}
}
