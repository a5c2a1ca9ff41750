// Package pipeline orchestrates one statement end to end: issuer
// detection, cleaning, metadata extraction, batch splitting, and
// sequential per-batch structured extraction with partial-result
// accumulation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-extractor/internal/batch"
	"github.com/dvloznov/statement-extractor/internal/domain"
	"github.com/dvloznov/statement-extractor/internal/extraction"
	"github.com/dvloznov/statement-extractor/internal/processor"
)

// ErrNoTransactions means cleaning succeeded but produced zero
// transaction lines. Distinct from malformed-row skips, which are
// recovered per row.
var ErrNoTransactions = errors.New("no transaction lines found")

// BatchExtractor turns one cleaned batch into structured transactions.
// *extraction.Client satisfies it; tests substitute a stub.
type BatchExtractor interface {
	Extract(ctx context.Context, fileName string, b domain.Batch) ([]domain.Transaction, error)
}

// OutcomeSink receives finished results. Persistence and export live
// outside this module; callers plug their own implementation in.
type OutcomeSink interface {
	SaveOutcome(ctx context.Context, fileName string, res *Result) error
}

// Status summarizes how a run went.
type Status string

const (
	// StatusSucceeded means every batch extracted cleanly.
	StatusSucceeded Status = "succeeded"
	// StatusPartial means some batches failed but others produced
	// transactions.
	StatusPartial Status = "partial"
	// StatusFailed means every batch failed.
	StatusFailed Status = "failed"
)

// BatchFailure records one failed batch so callers can re-run just the
// failed indices.
type BatchFailure struct {
	Index int
	Kind  extraction.Kind
	Err   error
}

// Result is the full outcome of one statement run.
type Result struct {
	Outcome    *domain.Outcome
	BatchCount int
	Failed     []BatchFailure
	Status     Status
}

// Runner wires the registry, splitter and extraction client together.
// It holds no mutable state across runs, so one Runner serves
// concurrent statements.
type Runner struct {
	registry  *processor.Registry
	extractor BatchExtractor
	batchSize int
	log       zerolog.Logger
}

// NewRunner creates a runner. batchSize values below 1 fall back to the
// splitter's default.
func NewRunner(registry *processor.Registry, extractor BatchExtractor, batchSize int, log zerolog.Logger) *Runner {
	return &Runner{
		registry:  registry,
		extractor: extractor,
		batchSize: batchSize,
		log:       log,
	}
}

// Run processes one statement. Statement-level failures (unrecognized
// issuer, nothing to extract) return a nil Result with the sentinel
// wrapped; per-batch extraction failures accumulate in the Result
// instead of aborting the run, and already-extracted batches are never
// discarded. Transaction order follows batch order.
func (r *Runner) Run(ctx context.Context, fileName, rawText string) (*Result, error) {
	proc, ok := r.registry.Match(rawText)
	if !ok {
		return nil, fmt.Errorf("%w: no registered processor matched %s", processor.ErrUnrecognizedIssuer, fileName)
	}
	log := r.log.With().
		Str("file", fileName).
		Str("issuer", proc.Descriptor().Code).
		Logger()
	log.Info().Msg("issuer detected")

	cleaned := proc.Clean(rawText)
	batches := batch.Split(cleaned, r.batchSize)
	if len(batches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTransactions, fileName)
	}
	log.Info().Int("batches", len(batches)).Msg("statement cleaned and split")

	res := &Result{
		Outcome: &domain.Outcome{
			Issuer:   proc.Descriptor(),
			Metadata: proc.ExtractMetadata(rawText),
		},
		BatchCount: len(batches),
	}

	// Batches run strictly sequentially; ordering across batches is the
	// contract downstream consumers rely on.
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		txns, err := r.extractor.Extract(ctx, fileName, b)
		if err != nil {
			kind := extraction.KindUnknown
			var ee *extraction.Error
			if errors.As(err, &ee) {
				kind = ee.Kind
			}
			res.Failed = append(res.Failed, BatchFailure{Index: b.Index, Kind: kind, Err: err})
			log.Warn().
				Int("batch", b.Index).
				Str("kind", string(kind)).
				Err(err).
				Msg("batch failed, continuing with remaining batches")
			continue
		}
		res.Outcome.Transactions = append(res.Outcome.Transactions, txns...)
	}

	switch {
	case len(res.Failed) == 0:
		res.Status = StatusSucceeded
	case len(res.Failed) == res.BatchCount:
		res.Status = StatusFailed
	default:
		res.Status = StatusPartial
	}
	res.Outcome.ProcessedAt = time.Now().UTC()

	log.Info().
		Str("status", string(res.Status)).
		Int("transactions", len(res.Outcome.Transactions)).
		Int("failed_batches", len(res.Failed)).
		Msg("statement processed")
	return res, nil
}
