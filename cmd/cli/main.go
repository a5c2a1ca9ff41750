package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-extractor/internal/config"
	"github.com/dvloznov/statement-extractor/internal/extraction"
	"github.com/dvloznov/statement-extractor/internal/logger"
	"github.com/dvloznov/statement-extractor/internal/pipeline"
	"github.com/dvloznov/statement-extractor/internal/processor"
	"github.com/dvloznov/statement-extractor/internal/source"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "banks":
		runBanks()
	case "upload":
		runUpload(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Statement Extractor CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Extract transactions from a statement text file or GCS URI")
	fmt.Println("  banks     List supported issuers")
	fmt.Println("  upload    Upload a statement text file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	input := fs.String("input", "", "Local statement text file or gs:// URI")
	fs.Parse(os.Args[2:])

	if *input == "" {
		log.Fatal().Msg("Error: --input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	rawText, fileName, err := readStatement(ctx, *input)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("Failed to read statement")
	}

	runner, err := buildRunner(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	res, err := runner.Run(ctx, fileName, rawText)
	if err != nil {
		log.Fatal().Err(err).Msg("Processing failed")
	}

	fmt.Printf("Issuer:       %s (%s)\n", res.Outcome.Issuer.Name, res.Outcome.Issuer.Code)
	fmt.Printf("Account:      ****%s (%s)\n", res.Outcome.Metadata.AccountLastDigits, res.Outcome.Metadata.AccountKind)
	fmt.Printf("Status:       %s\n", res.Status)
	fmt.Printf("Batches:      %d (%d failed)\n", res.BatchCount, len(res.Failed))
	fmt.Printf("Transactions: %d\n\n", len(res.Outcome.Transactions))

	for _, f := range res.Failed {
		fmt.Printf("  batch %d failed: %s\n", f.Index, f.Kind)
	}
	for _, tx := range res.Outcome.Transactions {
		fmt.Printf("%s  %-50s %12s  %s\n",
			tx.Date.Format("2006-01-02"), tx.Description, tx.AmountString(), tx.Category)
	}
}

func runBanks() {
	fmt.Println("Supported issuers:")
	for _, d := range processor.BuildRegistry().Descriptors() {
		fmt.Printf("  %-6s %s", d.Code, d.Name)
		if len(d.AccountKinds) > 0 {
			fmt.Print(" (")
			for i, k := range d.AccountKinds {
				if i > 0 {
					fmt.Print(", ")
				}
				fmt.Print(k)
			}
			fmt.Print(")")
		}
		fmt.Println()
	}
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name (defaults to EXTRACTOR_GCS_BUCKET)")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local statement text file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" {
		if cfg, err := config.Load(); err == nil {
			*bucketName = cfg.GCSBucket
		}
	}
	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}
	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := source.NewService().UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

// readStatement loads the statement text from a local path or GCS URI
// and derives the file name used for year inference.
func readStatement(ctx context.Context, input string) (rawText, fileName string, err error) {
	if source.IsGCSURI(input) {
		text, err := source.NewService().FetchText(ctx, input)
		if err != nil {
			return "", "", err
		}
		return text, source.FileNameFromURI(input), nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", "", err
	}
	return string(data), filepath.Base(input), nil
}

// buildRunner assembles the pipeline from configuration.
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
