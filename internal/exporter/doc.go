// Package exporter turns captured contact records into downloadable files.
//
// The package has two layers:
//
// BuildCSV and BuildWorkbook are pure builders. They render a fixed seven
// column layout (Email, First Name, Last Name, Phone, Company, Captured At,
// Page) and never touch the outside world. Timestamps go through a pluggable
// TimestampFormatter so output can be pinned in tests.
//
// Exporter wraps the builders with the delivery step. It renders into a pooled
// transient buffer, hands the bytes to a Deliverer and releases the buffer once
// delivery returns. An empty record list is a no-op: nothing is delivered.
//
// Example usage:
//
//	exp := exporter.New(exporter.WithLogger(logger))
//	rec := &delivery.Recorder{}
//	res, err := exp.ExportCSV(ctx, rec, records, "leads")
//	// res.Filename == "leads-2024-03-05.csv"
package exporter
