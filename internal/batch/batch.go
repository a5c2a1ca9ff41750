// Package batch splits a cleaned statement line stream into bounded
// chunks for structured extraction, keeping account-section boundaries
// intact so no chunk mixes lines from two accounts.
package batch

import (
	"github.com/dvloznov/statement-extractor/internal/domain"
)

// DefaultMaxSize is the number of transaction lines per batch when the
// caller does not configure one.
const DefaultMaxSize = 150

// Split partitions the cleaned lines into batches of at most maxSize
// transaction lines. A header line always closes the batch in progress
// and opens a new one carrying that header; when a section overflows
// maxSize, the continuation batches repeat the section's header so every
// batch stays self-describing. Lines appearing before any header go
// into a batch with an empty header. maxSize values below 1 fall back
// to DefaultMaxSize.
func Split(lines []domain.CleanedLine, maxSize int) []domain.Batch {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}

	var out []domain.Batch
	var cur domain.Batch

	closeBatch := func() {
		if len(cur.Lines) == 0 {
			return
		}
		cur.Index = len(out)
		out = append(out, cur)
		cur = domain.Batch{Header: cur.Header}
	}

	for _, l := range lines {
		if l.IsHeader {
			closeBatch()
			cur.Header = l.Text
			continue
		}
		if len(cur.Lines) >= maxSize {
			closeBatch()
		}
		cur.Lines = append(cur.Lines, l.Text)
	}
	closeBatch()
	return out
}
