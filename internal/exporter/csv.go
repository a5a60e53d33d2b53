package exporter

import (
	"strings"

	"leadexport/pkg/contracts/domain"
)

// MIMETypeCSV is the content type of CSV exports
const MIMETypeCSV = "text/csv; charset=utf-8"

// Headers is the fixed header row of every export
var Headers = []string{
	"Email",
	"First Name",
	"Last Name",
	"Phone",
	"Company",
	"Captured At",
	"Page",
}

// EscapeField quotes a CSV field when it contains a comma, a double quote or
// a newline. Inner double quotes are doubled. Any other value is returned
// unchanged.
func EscapeField(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Row converts a record into its seven unescaped column values.
// Absent optional fields become empty strings.
func Row(record domain.CaptureRecord, format TimestampFormatter) []string {
	if format == nil {
		format = PassthroughFormatter
	}
	return []string{
		record.Email,
		domain.Value(record.FirstName),
		domain.Value(record.LastName),
		domain.Value(record.Phone),
		domain.Value(record.Company),
		format(record.CapturedAt),
		domain.Value(record.PageTitle),
	}
}

// BuildCSV renders the header row followed by one row per record, in input
// order. Fields are joined with "," and rows with "\n"; there is no trailing
// newline.
func BuildCSV(records []domain.CaptureRecord, format TimestampFormatter) string {
	var b strings.Builder
	writeCSV(&b, records, format)
	return b.String()
}

// stringWriter is satisfied by strings.Builder and bytes.Buffer
type stringWriter interface {
	WriteString(s string) (int, error)
	WriteByte(c byte) error
}

func writeCSV(w stringWriter, records []domain.CaptureRecord, format TimestampFormatter) {
	writeRow(w, Headers)
	for _, record := range records {
		w.WriteByte('\n')
		writeRow(w, Row(record, format))
	}
}

func writeRow(w stringWriter, fields []string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(EscapeField(field))
	}
}
