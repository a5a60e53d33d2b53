package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"leadexport/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned by Export for formats other than csv and xlsx
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Deliverer hands generated file content to the user. content is only valid
// for the duration of the call; implementations that keep it must copy.
type Deliverer interface {
	Deliver(ctx context.Context, content []byte, mimeType, filename string) error
}

// DelivererFunc adapts a function to the Deliverer interface
type DelivererFunc func(ctx context.Context, content []byte, mimeType, filename string) error

// Deliver calls f
func (f DelivererFunc) Deliver(ctx context.Context, content []byte, mimeType, filename string) error {
	return f(ctx, content, mimeType, filename)
}

// Result describes a finished export. Delivered is false for the empty no-op.
type Result struct {
	Delivered bool
	Filename  string
	MIMEType  string
	Rows      int
	Bytes     int
}

// Exporter renders records and delivers the result
type Exporter struct {
	formatter TimestampFormatter
	now       func() time.Time
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
}

// Option configures an Exporter
type Option func(*Exporter)

// WithFormatter sets the captured_at formatter
func WithFormatter(f TimestampFormatter) Option {
	return func(e *Exporter) {
		if f != nil {
			e.formatter = f
		}
	}
}

// WithClock sets the source of "now" used for filenames
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the export instruments
func WithMetrics(m *Metrics) Option {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// WithTracer sets the tracer used for export spans
func WithTracer(t trace.Tracer) Option {
	return func(e *Exporter) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an exporter. Without options it formats timestamps en-US in
// UTC, uses the wall clock and the default slog logger.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		formatter: DefaultFormatter,
		now:       time.Now,
		logger:    slog.Default(),
		tracer:    otel.Tracer("leadexport/exporter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "exporter"))
	return e
}

// ExportCSV renders records as CSV and delivers them as
// "<prefix>-<YYYY-MM-DD>.csv". An empty prefix selects DefaultFilenamePrefix.
// With no records nothing is delivered and the zero Result is returned.
func (e *Exporter) ExportCSV(ctx context.Context, d Deliverer, records []domain.CaptureRecord, prefix string) (Result, error) {
	return e.export(ctx, d, records, prefix, domain.ExportFormatCSV, MIMETypeCSV,
		func(buf *bytes.Buffer) error {
			writeCSV(buf, records, e.formatter)
			return nil
		})
}

// ExportWorkbook renders records as an .xlsx workbook and delivers it as
// "<prefix>-<YYYY-MM-DD>.xlsx". Empty input is a no-op as for ExportCSV.
func (e *Exporter) ExportWorkbook(ctx context.Context, d Deliverer, records []domain.CaptureRecord, prefix string) (Result, error) {
	return e.export(ctx, d, records, prefix, domain.ExportFormatXLSX, MIMETypeXLSX,
		func(buf *bytes.Buffer) error {
			return BuildWorkbook(buf, records, e.formatter)
		})
}

// Export dispatches on format
func (e *Exporter) Export(ctx context.Context, d Deliverer, records []domain.CaptureRecord, prefix string, format domain.ExportFormat) (Result, error) {
	switch format {
	case domain.ExportFormatCSV, "":
		return e.ExportCSV(ctx, d, records, prefix)
	case domain.ExportFormatXLSX:
		return e.ExportWorkbook(ctx, d, records, prefix)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (e *Exporter) export(ctx context.Context, d Deliverer, records []domain.CaptureRecord, prefix string,
	format domain.ExportFormat, mimeType string, build func(*bytes.Buffer) error) (Result, error) {
	if len(records) == 0 {
		e.logger.DebugContext(ctx, "no records to export, skipping delivery",
			slog.String("format", string(format)))
		e.metrics.record(ctx, string(format), outcomeSkipped, 0, 0)
		return Result{}, nil
	}

	ctx, span := e.tracer.Start(ctx, "exporter.Export", trace.WithAttributes(
		attribute.String("export.format", string(format)),
		attribute.Int("export.records", len(records)),
	))
	defer span.End()

	filename := Filename(prefix, format, e.now())

	b := newBlob(mimeType)
	defer b.release()

	if err := build(b.buf); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		e.metrics.record(ctx, string(format), outcomeFailed, 0, 0)
		return Result{}, fmt.Errorf("failed to build %s: %w", filename, err)
	}

	size := b.Len()
	if err := d.Deliver(ctx, b.Bytes(), b.mimeType, filename); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		e.metrics.record(ctx, string(format), outcomeFailed, 0, 0)
		e.logger.ErrorContext(ctx, "export delivery failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return Result{}, fmt.Errorf("failed to deliver %s: %w", filename, err)
	}

	e.metrics.record(ctx, string(format), outcomeDelivered, len(records), size)
	e.logger.InfoContext(ctx, "export delivered",
		slog.String("filename", filename),
		slog.String("format", string(format)),
		slog.Int("rows", len(records)),
		slog.Int("bytes", size))

	return Result{
		Delivered: true,
		Filename:  filename,
		MIMEType:  mimeType,
		Rows:      len(records),
		Bytes:     size,
	}, nil
}
