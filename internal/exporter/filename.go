package exporter

import (
	"fmt"
	"time"

	"leadexport/pkg/contracts/domain"
)

// DefaultFilenamePrefix is used when the caller passes an empty prefix
const DefaultFilenamePrefix = "email-captures"

// Filename builds "<prefix>-<YYYY-MM-DD>.<ext>" from the UTC calendar date of now
func Filename(prefix string, format domain.ExportFormat, now time.Time) string {
	if prefix == "" {
		prefix = DefaultFilenamePrefix
	}
	return fmt.Sprintf("%s-%s.%s", prefix, now.UTC().Format("2006-01-02"), format.Extension())
}
