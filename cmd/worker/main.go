package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-extractor/internal/config"
	"github.com/dvloznov/statement-extractor/internal/extraction"
	"github.com/dvloznov/statement-extractor/internal/jobs"
	"github.com/dvloznov/statement-extractor/internal/jobs/inmemory"
	"github.com/dvloznov/statement-extractor/internal/logger"
	"github.com/dvloznov/statement-extractor/internal/pipeline"
	"github.com/dvloznov/statement-extractor/internal/processor"
	"github.com/dvloznov/statement-extractor/internal/source"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// In production the queue would be Cloud Tasks or Pub/Sub behind
	// the same interfaces.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Msg("Starting worker service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := buildRunner(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	fetcher := source.NewService()

	handler := makeHandler(runner, fetcher, log)

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

// makeHandler builds the job handler: fetch the statement text, run
// the pipeline, and record the result summary on the job.
func makeHandler(runner *pipeline.Runner, fetcher source.Fetcher, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		stmtJob, ok := job.(*jobs.ProcessStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", stmtJob.JobID).
			Str("source_uri", stmtJob.SourceURI).
			Msg("Processing statement job")

		rawText, err := fetcher.FetchText(ctx, stmtJob.SourceURI)
		if err != nil {
			log.Error().Err(err).Str("job_id", stmtJob.JobID).Msg("Failed to fetch statement text")
			return err
		}

		fileName := stmtJob.FileName
		if fileName == "" {
			fileName = source.FileNameFromURI(stmtJob.SourceURI)
		}

		res, err := runner.Run(ctx, fileName, rawText)
		if err != nil {
			log.Error().Err(err).Str("job_id", stmtJob.JobID).Msg("Pipeline execution failed")
			return err
		}

		stmtJob.IssuerCode = res.Outcome.Issuer.Code
		stmtJob.TransactionCount = len(res.Outcome.Transactions)
		stmtJob.BatchCount = res.BatchCount
		stmtJob.FailedBatches = len(res.Failed)
		stmtJob.RunStatus = string(res.Status)

		log.Info().
			Str("job_id", stmtJob.JobID).
			Str("status", string(res.Status)).
			Int("transactions", len(res.Outcome.Transactions)).
			Msg("Statement job completed")

		// A run where every batch failed still counts as a job failure
		// so the queue's retry policy applies.
		if res.Status == pipeline.StatusFailed {
			return fmt.Errorf("all %d batches failed for %s", res.BatchCount, fileName)
		}
		return nil
	}
}

func buildRunner(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Runner, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, &extraction.Error{Kind: extraction.KindCredentialMissing, Err: err}
	}

	gen, err := extraction.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.ModelName, cfg.Temperature)
	if err != nil {
		return nil, err
	}

	client := extraction.NewClient(gen, log,
		extraction.WithRetry(cfg.MaxRetries, cfg.RetryBaseDelay),
		extraction.WithCallTimeout(cfg.CallTimeout),
	)
	return pipeline.NewRunner(processor.BuildRegistry(), client, cfg.BatchSize, log), nil
}
