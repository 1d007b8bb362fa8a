package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"lfscli/internal/config"
)

const (
	ServiceName = config.AppName
	MeterName   = "lfscli/pipeline"
)

// Telemetry holds the trace and metric providers for one process
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *PipelineMetrics
	Logger         *slog.Logger
}

// InitializeTelemetry sets up tracing and metrics.
// Spans are always recorded so they carry IDs; they are exported to traceOut
// only with the "stdout" exporter. Metrics go to a private Prometheus
// registry that WriteMetricsFile dumps in text exposition format.
func InitializeTelemetry(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	if traceOut == nil {
		traceOut = os.Stderr
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	tel := &Telemetry{Logger: logger}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	switch cfg.TraceExporter {
	case config.TraceExporterStdout:
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(traceOut),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	case config.TraceExporterNone, "":
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	tel.TracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	tel.Tracer = tel.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tel.TracerProvider)

	tel.Registry = prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(tel.Registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	tel.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	tel.Meter = tel.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))

	tel.Metrics, err = NewPipelineMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter))

	return tel, nil
}

// WriteMetricsFile gathers the registry and writes it atomically to path
func (t *Telemetry) WriteMetricsFile(path string) error {
	if t == nil || t.Registry == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}

// Shutdown flushes pending spans and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// PipelineMetrics holds the instruments recorded by a run
type PipelineMetrics struct {
	StageRuns       metric.Int64Counter
	StageDuration   metric.Float64Histogram
	BytesDownloaded metric.Int64Counter
	LinesWritten    metric.Int64Counter
	FieldsPerLine   metric.Int64Histogram
}

// NewPipelineMetrics creates the run instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	stageRuns, err := meter.Int64Counter(
		"lfs_stage_runs",
		metric.WithDescription("Pipeline stage executions by stage and status"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"lfs_stage_duration",
		metric.WithDescription("Pipeline stage duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	bytesDownloaded, err := meter.Int64Counter(
		"lfs_download_size",
		metric.WithDescription("Bytes of workbook data downloaded"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	linesWritten, err := meter.Int64Counter(
		"lfs_output_lines",
		metric.WithDescription("Lines written to the transposed output"),
	)
	if err != nil {
		return nil, err
	}

	fieldsPerLine, err := meter.Int64Histogram(
		"lfs_output_fields",
		metric.WithDescription("Fields per line of the transposed output"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		StageRuns:       stageRuns,
		StageDuration:   stageDuration,
		BytesDownloaded: bytesDownloaded,
		LinesWritten:    linesWritten,
		FieldsPerLine:   fieldsPerLine,
	}, nil
}

// RecordStage records one stage execution
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	)
	m.StageRuns.Add(ctx, 1, attrs)
	m.StageDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDownload records the size of a downloaded workbook
func (m *PipelineMetrics) RecordDownload(ctx context.Context, bytes int64) {
	if m == nil {
		return
	}
	m.BytesDownloaded.Add(ctx, bytes)
}

// RecordOutput records the shape of a written output file
func (m *PipelineMetrics) RecordOutput(ctx context.Context, lines, fields int) {
	if m == nil {
		return
	}
	m.LinesWritten.Add(ctx, int64(lines))
	m.FieldsPerLine.Record(ctx, int64(fields))
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from the span in ctx
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
