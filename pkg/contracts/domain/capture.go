package domain

// CaptureRecord is one contact capture entry collected from a page form.
// Optional fields are pointers so that an absent value and an explicit JSON
// null both decode to nil.
type CaptureRecord struct {
	Email      string  `json:"email" validate:"required"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Company    *string `json:"company,omitempty"`
	CapturedAt string  `json:"captured_at" validate:"required"`
	PageTitle  *string `json:"page_title,omitempty"`
}

// ExportFormat identifies the artifact produced by an export
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// Extension returns the filename extension for the format, without the dot
func (f ExportFormat) Extension() string {
	return string(f)
}

// Value returns the pointed-to string or "" when the pointer is nil
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
