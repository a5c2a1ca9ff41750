package extraction

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-extractor/internal/domain"
	"github.com/dvloznov/statement-extractor/internal/normalize"
)

const (
	// DefaultMaxRetries is the number of additional attempts after the
	// first failure, applied only to retryable failures.
	DefaultMaxRetries = 2
	// DefaultBaseDelay is the wait before the first retry; it doubles
	// on each subsequent one.
	DefaultBaseDelay = 2 * time.Second
	// DefaultCallTimeout bounds one model call.
	DefaultCallTimeout = 90 * time.Second
)

// rowFieldCount is the pipe-delimited contract with the model:
// date|description|amount|balance|category.
const rowFieldCount = 5

// Client extracts structured transactions from cleaned batches through
// a Generator, retrying transient failures with doubling backoff.
type Client struct {
	gen        Generator
	log        zerolog.Logger
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithRetry overrides the retry count and base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates an extraction client around gen.
func NewClient(gen Generator, log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		gen:        gen,
		log:        log,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		timeout:    DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract sends one batch to the model and parses the response rows.
// Failures come back as *Error with the Kind set; only rate-limit and
// network failures are retried. Malformed response rows are logged and
// skipped, never fatal.
func (c *Client) Extract(ctx context.Context, fileName string, b domain.Batch) ([]domain.Transaction, error) {
	user := buildUserPrompt(fileName, b)

	var raw string
	delay := c.baseDelay
	for attempt := 0; ; attempt++ {
		var err error
		raw, err = c.generate(ctx, user)
		if err == nil {
			break
		}

		ee := Classify(err)
		if !ee.Retryable() || attempt >= c.maxRetries {
			c.log.Error().
				Err(ee).
				Str("kind", string(ee.Kind)).
				Int("batch", b.Index).
				Int("attempts", attempt+1).
				Msg("batch extraction failed")
			return nil, ee
		}

		c.log.Warn().
			Str("kind", string(ee.Kind)).
			Int("batch", b.Index).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("transient extraction failure, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &Error{Kind: KindNetworkError, Err: ctx.Err()}
		}
		delay *= 2
	}

	return c.parseRows(raw, b), nil
}

func (c *Client) generate(ctx context.Context, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.gen.GenerateText(callCtx, systemPrompt, user)
}

// parseRows converts the model's pipe-delimited output into
// transactions. Rows with the wrong field count or an unparseable date
// are skipped with a warning.
func (c *Client) parseRows(raw string, b domain.Batch) []domain.Transaction {
	var out []domain.Transaction

	for _, row := range strings.Split(scrubModelOutput(raw), "\n") {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}

		fields := strings.Split(row, "|")
		if len(fields) != rowFieldCount {
			c.log.Warn().
				Int("batch", b.Index).
				Int("fields", len(fields)).
				Str("row", row).
				Msg("skipping malformed row")
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		date, ok := normalize.ParseDate(fields[0], nil)
		if !ok {
			c.log.Warn().
				Int("batch", b.Index).
				Str("date", fields[0]).
				Msg("skipping row with unparseable date")
			continue
		}

		balance := decimal.Zero
		if fields[3] != "" {
			balance = normalize.ParseAmount(fields[3])
		}

		out = append(out, domain.Transaction{
			Date:        date,
			Description: fields[1],
			Amount:      normalize.ParseAmount(fields[2]),
			Balance:     balance,
			Category:    fields[4],
		})
	}
	return out
}

// IsKind reports whether err is an extraction *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Kind == kind
}
