// Package api contains the HTTP API contract of the capture export service.
// Version v1 represents the current stable API version.
package api

import (
	"leadexport/pkg/contracts/domain"
)

// ExportRequest asks for the given records to be returned as a download.
// An empty FilenamePrefix selects the configured default prefix.
type ExportRequest struct {
	Records        []domain.CaptureRecord `json:"records" validate:"dive"`
	FilenamePrefix string                 `json:"filename_prefix,omitempty" validate:"omitempty,max=100,filename"`
	Format         domain.ExportFormat    `json:"format,omitempty" validate:"omitempty,oneof=csv xlsx"`
}

// ExportSummary describes a finished export. The HTTP API sends the file
// itself; the CLI prints this summary.
type ExportSummary struct {
	Delivered bool   `json:"delivered"`
	Filename  string `json:"filename,omitempty"`
	Path      string `json:"path,omitempty"`
	Rows      int    `json:"rows"`
	Bytes     int    `json:"bytes"`
}
