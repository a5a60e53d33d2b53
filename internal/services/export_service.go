package services

import (
	"context"
	"errors"
	"log/slog"

	apierrors "leadexport/internal/errors"
	"leadexport/internal/exporter"
	api "leadexport/pkg/contracts/api/v1"
	"leadexport/pkg/contracts/domain"
)

// StructValidator validates tagged request structs
type StructValidator interface {
	ValidateStruct(v interface{}) error
}

// Exporter is the part of *exporter.Exporter the service depends on
type Exporter interface {
	Export(ctx context.Context, d exporter.Deliverer, records []domain.CaptureRecord, prefix string, format domain.ExportFormat) (exporter.Result, error)
}

// ExportResult describes the outcome of ExportService.Export
type ExportResult struct {
	Delivered bool
	Filename  string
	Format    domain.ExportFormat
	Rows      int
	Bytes     int
}

// ExportOptions holds the configured defaults of an ExportService
type ExportOptions struct {
	DefaultPrefix string
	DefaultFormat domain.ExportFormat
	MaxRecords    int
}

// ExportService validates export requests and runs them through the exporter
type ExportService struct {
	exporter  Exporter
	validator StructValidator
	opts      ExportOptions
	logger    *slog.Logger
}

// NewExportService creates an export service
func NewExportService(exp Exporter, validator StructValidator, opts ExportOptions, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultPrefix == "" {
		opts.DefaultPrefix = exporter.DefaultFilenamePrefix
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = domain.ExportFormatCSV
	}
	return &ExportService{
		exporter:  exp,
		validator: validator,
		opts:      opts,
		logger:    logger.With(slog.String("service", "export")),
	}
}

// Export validates req and delivers the rendered file through d. An empty
// record list is not an error: nothing is delivered and Delivered is false.
func (s *ExportService) Export(ctx context.Context, d exporter.Deliverer, req api.ExportRequest) (ExportResult, error) {
	if d == nil {
		return ExportResult{}, ErrNoDeliverer
	}

	if s.opts.MaxRecords > 0 && len(req.Records) > s.opts.MaxRecords {
		return ExportResult{}, apierrors.PayloadTooLarge("records", int64(s.opts.MaxRecords), int64(len(req.Records)))
	}

	if s.validator != nil {
		if err := s.validator.ValidateStruct(req); err != nil {
			s.logger.DebugContext(ctx, "export request rejected", slog.String("error", err.Error()))
			return ExportResult{}, err
		}
	}

	prefix := req.FilenamePrefix
	if prefix == "" {
		prefix = s.opts.DefaultPrefix
	}
	format := req.Format
	if format == "" {
		format = s.opts.DefaultFormat
	}

	res, err := s.exporter.Export(ctx, d, req.Records, prefix, format)
	if err != nil {
		switch {
		case errors.Is(err, exporter.ErrUnsupportedFormat):
			return ExportResult{}, apierrors.ErrValidation("format", "format must be one of: csv, xlsx")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return ExportResult{}, err
		}
		return ExportResult{}, apierrors.ExportFailed(err)
	}

	if !res.Delivered {
		s.logger.InfoContext(ctx, "export skipped, no records",
			slog.String("format", string(format)))
	}

	return ExportResult{
		Delivered: res.Delivered,
		Filename:  res.Filename,
		Format:    format,
		Rows:      res.Rows,
		Bytes:     res.Bytes,
	}, nil
}

// Summary converts a result to its wire form
func (r ExportResult) Summary() api.ExportSummary {
	return api.ExportSummary{
		Delivered: r.Delivered,
		Filename:  r.Filename,
		Rows:      r.Rows,
		Bytes:     r.Bytes,
	}
}
