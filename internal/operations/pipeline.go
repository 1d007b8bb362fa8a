package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lfscli/internal/config"
	"lfscli/internal/dataprocessing"
	"lfscli/internal/download"
	apperrors "lfscli/internal/errors"
	"lfscli/internal/exporter"
	"lfscli/internal/infrastructure"
	"lfscli/internal/scraper"
)

// WorkbookDownloader stages the workbook a release link points at
type WorkbookDownloader interface {
	Download(ctx context.Context, link scraper.ReleaseLink) (*download.Result, error)
}

// TableTransposer converts a staged workbook into the output file
type TableTransposer interface {
	Transpose(ctx context.Context, workbookPath, outputPath string) (*dataprocessing.Summary, error)
}

// Options are the per-run inputs that are not owned by a single stage
type Options struct {
	ListingURL   string
	LinkSelector string
	OutputPath   string
}

// RunResult is the outcome of one run. Each stage's result is set once the
// stage has completed.
type RunResult struct {
	RunID    string
	Link     *scraper.ReleaseLink
	Download *download.Result
	Summary  *dataprocessing.Summary
	Steps    []*StepState
	Duration time.Duration
}

// Step returns the state of the step with id, or nil
func (r *RunResult) Step(id string) *StepState {
	for _, s := range r.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Pipeline runs fetch, extract, download and transpose strictly in order.
// The first failing step stops the run.
type Pipeline struct {
	fetcher    scraper.PageFetcher
	downloader WorkbookDownloader
	transposer TableTransposer
	opts       Options
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
}

// NewPipeline assembles a pipeline from its stages. tel may be nil.
func NewPipeline(fetcher scraper.PageFetcher, downloader WorkbookDownloader, transposer TableTransposer,
	opts Options, tel *infrastructure.Telemetry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	p := &Pipeline{
		fetcher:    fetcher,
		downloader: downloader,
		transposer: transposer,
		opts:       opts,
		tracer:     otel.Tracer(infrastructure.MeterName),
		logger:     logger.With(slog.String("component", "pipeline")),
	}
	if tel != nil {
		p.tracer = tel.Tracer
		p.metrics = tel.Metrics
	}
	return p
}

// NewDefaultPipeline wires the production stages from cfg
func NewDefaultPipeline(cfg *config.Config, paths *config.Paths, tel *infrastructure.Telemetry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	client := infrastructure.NewHTTPClient(cfg.Source)

	return NewPipeline(
		scraper.NewPageFetcher(cfg.Source, client, logger),
		download.NewDownloader(client, cfg.Source, paths.WorkbookFile, logger),
		dataprocessing.NewTransposer(cfg.Workbook, exporter.NewCSVWriter(logger), logger),
		Options{
			ListingURL:   cfg.Source.ListingURL,
			LinkSelector: cfg.Source.LinkSelector,
			OutputPath:   paths.OutputFile,
		},
		tel,
		logger,
	)
}

// Run executes the full pipeline
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	result := &RunResult{
		RunID: infrastructure.GetTraceID(ctx),
		Steps: []*StepState{
			NewStepState(StepFetch),
			NewStepState(StepExtract),
			NewStepState(StepDownload),
			NewStepState(StepTranspose),
		},
	}
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "lfs.run", trace.WithAttributes(
		attribute.String("run.id", result.RunID),
		attribute.String("listing.url", p.opts.ListingURL),
	))
	defer span.End()

	p.logger.InfoContext(ctx, "Run started",
		slog.String("listing_url", p.opts.ListingURL),
		slog.String("otel_trace_id", infrastructure.TraceIDFromContext(ctx)))

	var page *scraper.Page
	err := p.runStep(ctx, result.Steps[0], func(ctx context.Context) (string, error) {
		var err error
		page, err = p.fetcher.Fetch(ctx, p.opts.ListingURL)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d bytes", len(page.HTML)), nil
	})

	if err == nil {
		err = p.runStep(ctx, result.Steps[1], func(ctx context.Context) (string, error) {
			link, err := scraper.ExtractReleaseLink(page.HTML, p.opts.LinkSelector)
			if err != nil {
				return "", err
			}
			result.Link = &link
			p.logger.InfoContext(ctx, "Found release link",
				slog.String("href", link.Href),
				slog.String("text", link.Text))
			return link.Href, nil
		})
	}

	if err == nil {
		err = p.runStep(ctx, result.Steps[2], func(ctx context.Context) (string, error) {
			staged, err := p.downloader.Download(ctx, *result.Link)
			if err != nil {
				return "", err
			}
			result.Download = staged
			p.metrics.RecordDownload(ctx, staged.Size)
			infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
				"download.url":  staged.URL,
				"download.size": staged.Size,
			})
			return staged.URL, nil
		})
	}

	if err == nil {
		err = p.transpose(ctx, result, result.Steps[3], result.Download.Path)
	}

	result.Duration = time.Since(start)
	skipRemaining(result.Steps)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return result, err
	}

	p.logger.InfoContext(ctx, "Run completed",
		slog.String("output", result.Summary.OutputPath),
		slog.Int("lines", result.Summary.Lines),
		slog.Int("fields_per_line", result.Summary.FieldsPerLine),
		slog.String("workbook_url", result.Download.URL),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// RunOffline transposes an already staged workbook without touching the network
func (p *Pipeline) RunOffline(ctx context.Context, workbookPath string) (*RunResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	result := &RunResult{
		RunID: infrastructure.GetTraceID(ctx),
		Steps: []*StepState{NewStepState(StepTranspose)},
	}
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "lfs.run_offline", trace.WithAttributes(
		attribute.String("run.id", result.RunID),
		attribute.String("workbook.path", workbookPath),
	))
	defer span.End()

	err := p.transpose(ctx, result, result.Steps[0], workbookPath)
	result.Duration = time.Since(start)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return result, err
	}

	p.logger.InfoContext(ctx, "Run completed",
		slog.String("output", result.Summary.OutputPath),
		slog.Int("lines", result.Summary.Lines),
		slog.Int("fields_per_line", result.Summary.FieldsPerLine),
		slog.Duration("duration", result.Duration))

	return result, nil
}

func (p *Pipeline) transpose(ctx context.Context, result *RunResult, state *StepState, workbookPath string) error {
	return p.runStep(ctx, state, func(ctx context.Context) (string, error) {
		summary, err := p.transposer.Transpose(ctx, workbookPath, p.opts.OutputPath)
		if err != nil {
			return "", err
		}
		result.Summary = summary
		p.metrics.RecordOutput(ctx, summary.Lines, summary.FieldsPerLine)
		return fmt.Sprintf("%d lines x %d fields", summary.Lines, summary.FieldsPerLine), nil
	})
}

// runStep executes fn inside its own span and records its state and metrics.
// A failure is logged here once and returned wrapped in a StepError.
func (p *Pipeline) runStep(ctx context.Context, state *StepState, fn func(context.Context) (string, error)) error {
	if err := ctx.Err(); err != nil {
		state.Fail(err)
		return &StepError{Step: state.ID, Cause: err}
	}

	ctx, span := p.tracer.Start(ctx, "lfs."+state.ID)
	defer span.End()

	state.Start()
	p.logger.DebugContext(ctx, "Step started", slog.String("step", state.ID))

	message, err := fn(ctx)
	if err != nil {
		state.Fail(err)
		p.metrics.RecordStage(ctx, state.ID, state.Duration(), err)
		infrastructure.RecordError(ctx, err)
		attrs := []any{
			slog.String("step", state.ID),
			slog.String("step_name", state.Name),
			slog.Duration("duration", state.Duration()),
			slog.String("error", err.Error()),
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			attrs = append(attrs,
				slog.String("error_type", string(appErr.Type)),
				slog.Any("context", appErr.Context))
		}
		p.logger.ErrorContext(ctx, "Step failed", attrs...)
		return &StepError{Step: state.ID, Cause: err}
	}

	state.Complete(message)
	p.metrics.RecordStage(ctx, state.ID, state.Duration(), nil)
	p.logger.InfoContext(ctx, "Step completed",
		slog.String("step", state.ID),
		slog.String("result", message),
		slog.Duration("duration", state.Duration()))
	return nil
}

func skipRemaining(steps []*StepState) {
	for _, s := range steps {
		if s.GetStatus() == StepStatusPending {
			s.Skip("previous step failed")
		}
	}
}
