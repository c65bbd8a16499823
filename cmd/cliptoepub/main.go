package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/app"
	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/models"
)

var (
	// Command-line flags
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	inputFile    = flag.String("input", "", "Read capture from file instead of stdin")
	accumulate   = flag.Bool("accumulate", false, "Combine the given input files into one book, in order")
	resetSession = flag.Bool("reset", false, "Discard the open accumulation session before adding clips")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
	showHistory  = flag.Int("history", 0, "Print the N most recent conversions and exit")
	clearCache   = flag.Bool("clear-cache", false, "Clear the conversion cache and exit")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("cliptoepub version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence:
	// 1. Load config (defaults -> file -> env)
	// 2. Initialize logger
	// 3. Assemble the pipeline
	configPath := *configFile
	if configPath == "" {
		configPath = *configFileC
	}
	if configPath == "" {
		if _, err := os.Stat("cliptoepub.toml"); err == nil {
			configPath = "cliptoepub.toml"
		}
	}

	var err error
	config, err = common.LoadFromFile(configPath)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)

	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("version", common.GetVersion()).
		Str("config", configPath).
		Str("output_dir", config.Output.Dir).
		Msg("cliptoepub starting")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	// Cancel the active run on Ctrl+C instead of killing the process
	// mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *clearCache:
		err = runClearCache(ctx, application)
	case *showHistory > 0:
		err = runHistory(ctx, application, *showHistory)
	case *accumulate:
		err = runAccumulate(ctx, application, flag.Args(), *resetSession)
	default:
		err = runConvert(ctx, application)
	}
	if err != nil {
		os.Exit(1)
	}
}

func runConvert(ctx context.Context, application *app.App) error {
	raw, err := readInput()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read input")
		return err
	}

	content := models.CapturedContent{
		RawText:    raw,
		SourceHint: models.SourceClipboard,
	}

	result, err := application.Converter.Convert(ctx, content)
	if err != nil {
		kind := models.KindOf(err)
		logger.Error().Err(err).Str("kind", string(kind)).Msg("Conversion failed")
		fmt.Fprintf(os.Stderr, "conversion failed (%s): %v\n", kind, err)
		return err
	}

	if result.CacheHit {
		fmt.Printf("Reused cached book: %s\n", result.ArtifactPath)
	} else {
		fmt.Printf("Book created: %s\n", result.ArtifactPath)
	}
	return nil
}

// runAccumulate adds each input file to the accumulation session in
// order, then finalizes the session into one book.
func runAccumulate(ctx context.Context, application *app.App, paths []string, reset bool) error {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "accumulate mode needs at least one input file")
		return fmt.Errorf("no input files")
	}

	acc := application.Converter.Accumulator()
	if reset {
		acc.Reset()
	}
	if err := acc.Begin(); err != nil {
		logger.Error().Err(err).Msg("Cannot start accumulation session")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Failed to read clip")
			return err
		}
		count, err := acc.Add(string(data))
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Failed to accumulate clip")
			return err
		}
		logger.Info().Str("path", path).Int("clips", count).Msg("Clip added")
	}

	result, err := application.Converter.ConvertAccumulated(ctx)
	if err != nil {
		kind := models.KindOf(err)
		logger.Error().Err(err).Str("kind", string(kind)).Msg("Conversion failed")
		fmt.Fprintf(os.Stderr, "conversion failed (%s): %v\n", kind, err)
		return err
	}

	fmt.Printf("Book created from %d clips: %s\n", len(paths), result.ArtifactPath)
	return nil
}

func runHistory(ctx context.Context, application *app.App, limit int) error {
	if application.History == nil {
		fmt.Fprintln(os.Stderr, "history is disabled in configuration")
		return fmt.Errorf("history disabled")
	}

	entries, err := application.History.Recent(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list history")
		return err
	}

	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		fmt.Printf("%s  %-8s %-12s %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), status, e.SourceKind, e.OutputPath)
	}
	return nil
}

func runClearCache(ctx context.Context, application *app.App) error {
	if application.Storage == nil {
		fmt.Fprintln(os.Stderr, "cache is disabled in configuration")
		return fmt.Errorf("cache disabled")
	}
	if err := application.Storage.CacheStorage().Clear(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to clear cache")
		return err
	}
	fmt.Println("Conversion cache cleared")
	return nil
}

// readInput reads the capture payload from the input file or stdin.
func readInput() (string, error) {
	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", *inputFile, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
