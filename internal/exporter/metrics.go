package exporter

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeDelivered = "delivered"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

// Metrics holds the export instruments. A nil *Metrics records nothing.
type Metrics struct {
	exports metric.Int64Counter
	rows    metric.Int64Counter
	bytes   metric.Int64Histogram
}

// NewMetrics registers the export instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	exports, err := meter.Int64Counter(
		"capture_exports_total",
		metric.WithDescription("Total number of capture export attempts"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"capture_export_rows_total",
		metric.WithDescription("Total number of records written to delivered exports"),
	)
	if err != nil {
		return nil, err
	}

	size, err := meter.Int64Histogram(
		"capture_export_bytes",
		metric.WithDescription("Size of delivered exports in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{exports: exports, rows: rows, bytes: size}, nil
}

func (m *Metrics) record(ctx context.Context, format, outcome string, rows, size int) {
	if m == nil {
		return
	}
	formatAttr := attribute.String("format", format)
	m.exports.Add(ctx, 1, metric.WithAttributes(formatAttr, attribute.String("outcome", outcome)))
	if outcome != outcomeDelivered {
		return
	}
	m.rows.Add(ctx, int64(rows), metric.WithAttributes(formatAttr))
	m.bytes.Record(ctx, int64(size), metric.WithAttributes(formatAttr))
}
