// Command lfsmirror downloads the latest Labour Force, Australia time series
// workbook and writes its Data1 table transposed to a CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lfscli/internal/config"
	apperrors "lfscli/internal/errors"
	"lfscli/internal/infrastructure"
	"lfscli/internal/operations"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("lfsmirror", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a YAML config file (default: lfscli.yaml or configs/lfscli.yaml if present)")
	listingURL := fs.String("listing-url", "", "release listing page URL")
	outFile := fs.String("out", "", "output CSV path (default transposed.csv)")
	stagingDir := fs.String("staging-dir", "", "directory for the downloaded workbook (default Downloads)")
	sheet := fs.String("sheet", "", "worksheet to transpose (default Data1)")
	marker := fs.String("marker", "", "first-column value marking the table header row (default \"Series ID\")")
	fetchMode := fs.String("fetch-mode", "", "listing page fetch mode: http | browser")
	if err := fs.Parse(args); err != nil {
		return apperrors.ExitConfig
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	if err := cfg.ApplyOverrides(config.Overrides{
		ListingURL: *listingURL,
		FetchMode:  *fetchMode,
		StagingDir: *stagingDir,
		OutputFile: *outFile,
		Sheet:      *sheet,
		Marker:     *marker,
	}); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitUnexpected
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitStorage
	}

	logger, err := infrastructure.InitializeLogger(paths.LoggingConfig(cfg.Logging))
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()
	logger = infrastructure.WithComponent(logger, "lfsmirror")
	paths.LogPathResolution(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, stderr, logger)
	if err != nil {
		logger.Error("Telemetry initialization failed", slog.String("error", err.Error()))
		return apperrors.ExitConfig
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			infrastructure.WithError(logger, err).Warn("Telemetry shutdown failed")
		}
	}()

	logger.Info("lfsmirror starting",
		slog.String("version", config.AppVersion),
		slog.String("listing_url", cfg.Source.ListingURL),
		slog.String("fetch_mode", cfg.Source.FetchMode),
		slog.String("sheet", cfg.Workbook.Sheet))

	pipeline := operations.NewDefaultPipeline(cfg, paths, tel, logger)
	result, runErr := pipeline.Run(ctx)

	if err := tel.WriteMetricsFile(paths.MetricsFile); err != nil {
		infrastructure.WithError(logger, err).Warn("Failed to write metrics file")
	}

	if runErr != nil {
		code := apperrors.ExitCode(runErr)
		logger.Info("Run aborted",
			slog.String("run_id", result.RunID),
			slog.String("step", operations.FailedStep(runErr)),
			slog.Int("exit_code", code))
		return code
	}

	return apperrors.ExitOK
}
