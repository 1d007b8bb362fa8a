// Command transpose converts an already downloaded Labour Force workbook into
// the transposed CSV without touching the network.
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

	"lfscli/internal/config"
	"lfscli/internal/dataprocessing"
	apperrors "lfscli/internal/errors"
	"lfscli/internal/exporter"
	"lfscli/internal/infrastructure"
	"lfscli/internal/operations"
	"lfscli/internal/validation"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("transpose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a YAML config file")
	inFile := fs.String("in", "", "workbook to read (default: the staged Downloads/data.xlsx)")
	outFile := fs.String("out", "", "output CSV path (default transposed.csv)")
	sheet := fs.String("sheet", "", "worksheet to transpose (default Data1)")
	marker := fs.String("marker", "", "first-column value marking the table header row (default \"Series ID\")")
	if err := fs.Parse(args); err != nil {
		return apperrors.ExitConfig
	}

	cfg, err := config.Load(*configFile)
	if err == nil {
		err = cfg.ApplyOverrides(config.Overrides{OutputFile: *outFile, Sheet: *sheet, Marker: *marker})
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitUnexpected
	}
	workbook := paths.WorkbookFile
	if *inFile != "" {
		workbook = *inFile
	}

	logger, err := infrastructure.InitializeLogger(paths.LoggingConfig(cfg.Logging))
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()
	logger = infrastructure.WithComponent(logger, "transpose")

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateWorkbook(workbook); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	if err := validator.ValidateOutputPath(paths.OutputFile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, stderr, logger)
	if err != nil {
		logger.Error("Telemetry initialization failed", slog.String("error", err.Error()))
		return apperrors.ExitConfig
	}
	defer tel.Shutdown(context.Background())

	transposer := dataprocessing.NewTransposer(cfg.Workbook, exporter.NewCSVWriter(logger), logger)
	pipeline := operations.NewPipeline(nil, nil, transposer,
		operations.Options{OutputPath: paths.OutputFile}, tel, logger)

	_, runErr := pipeline.RunOffline(ctx, workbook)

	if err := tel.WriteMetricsFile(paths.MetricsFile); err != nil {
		infrastructure.WithError(logger, err).Warn("Failed to write metrics file")
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return apperrors.ExitCode(runErr)
	}
	return apperrors.ExitOK
}
