package exporter

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadexport/pkg/contracts/domain"
)

func pinnedFormatter(string) string { return "LOCALE" }

// unescapeField reverses EscapeField using the standard CSV rule
func unescapeField(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

func parseCSV(t *testing.T, content string) [][]string {
	t.Helper()
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = len(Headers)
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestEscapeField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value", "a@x.com", "a@x.com"},
		{"empty value", "", ""},
		{"comma", "Acme, Inc", `"Acme, Inc"`},
		{"quote", `say "hi"`, `"say ""hi"""`},
		{"newline", "line1\nline2", "\"line1\nline2\""},
		{"comma and trailing quote", `Acme, Inc."`, `"Acme, Inc."""`},
		{"leading space untouched", " padded", " padded"},
		{"carriage return untouched", "a\rb", "a\rb"},
		{"unicode untouched", "Zoë Müller", "Zoë Müller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeField(tt.input))
		})
	}
}

func TestEscapeField_RoundTrip(t *testing.T) {
	values := []string{
		"a,b",
		`"`,
		`""`,
		"multi\nline\nvalue",
		`mixed, "quoted"` + "\nand newline",
		`,`,
	}

	for _, v := range values {
		escaped := EscapeField(v)
		assert.True(t, strings.HasPrefix(escaped, `"`), "value %q should be quoted", v)
		assert.Equal(t, v, unescapeField(escaped))
	}
}

func TestEscapeField_HeadersUnchanged(t *testing.T) {
	for _, h := range Headers {
		assert.Equal(t, h, EscapeField(h))
	}
}

func TestBuildCSV_HeaderOnly(t *testing.T) {
	assert.Equal(t, "Email,First Name,Last Name,Phone,Company,Captured At,Page", BuildCSV(nil, pinnedFormatter))
}

func TestBuildCSV_MinimalRecord(t *testing.T) {
	records := []domain.CaptureRecord{{Email: "a@x.com", CapturedAt: "2024-01-15T10:00:00Z"}}

	content := BuildCSV(records, pinnedFormatter)

	lines := strings.Split(content, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a@x.com,,,,,LOCALE,", lines[1])
}

func TestBuildCSV_DefaultFormatterQuotesDate(t *testing.T) {
	records := []domain.CaptureRecord{{Email: "a@x.com", CapturedAt: "2024-01-15T10:00:00Z"}}

	content := BuildCSV(records, DefaultFormatter)

	assert.True(t, strings.HasSuffix(content, "\na@x.com,,,,,\"1/15/2024, 10:00:00 AM\","))
}

func TestBuildCSV_EscapesCompany(t *testing.T) {
	records := []domain.CaptureRecord{{
		Email:      "b@x.com",
		Company:    domain.StringPtr(`Acme, Inc."`),
		CapturedAt: "2024-01-15T10:00:00Z",
	}}

	content := BuildCSV(records, pinnedFormatter)

	assert.Contains(t, content, `,"Acme, Inc.""",`)
}

func TestBuildCSV_RowsMatchInputOrder(t *testing.T) {
	records := []domain.CaptureRecord{
		{
			Email:      "first@x.com",
			FirstName:  domain.StringPtr("Ann"),
			LastName:   domain.StringPtr("O'Neil, Jr."),
			Phone:      domain.StringPtr("+1 555 0100"),
			Company:    domain.StringPtr(`The "Best" Co`),
			CapturedAt: "2024-01-15T10:00:00Z",
			PageTitle:  domain.StringPtr("Pricing\nPlans"),
		},
		{Email: "second@x.com", CapturedAt: "not a date"},
		{
			Email:      "third@x.com",
			FirstName:  domain.StringPtr(" leading"),
			CapturedAt: "2024-02-01",
			PageTitle:  domain.StringPtr(""),
		},
	}

	rows := parseCSV(t, BuildCSV(records, DefaultFormatter))

	require.Len(t, rows, len(records)+1)
	assert.Equal(t, Headers, rows[0])
	for i, record := range records {
		assert.Equal(t, Row(record, DefaultFormatter), rows[i+1], "row %d", i)
	}
	assert.Equal(t, "not a date", rows[2][5])
}

func TestBuildCSV_MissingFieldsAreEmpty(t *testing.T) {
	records := []domain.CaptureRecord{
		{Email: "a@x.com", CapturedAt: "2024-01-15T10:00:00Z"},
		{Email: "b@x.com", CapturedAt: "2024-01-16T10:00:00Z", FirstName: nil, PageTitle: nil},
	}

	content := BuildCSV(records, pinnedFormatter)

	assert.NotContains(t, content, "null")
	assert.NotContains(t, content, "undefined")
	for _, row := range parseCSV(t, content)[1:] {
		assert.Len(t, row, 7)
		for _, idx := range []int{1, 2, 3, 4, 6} {
			assert.Empty(t, row[idx])
		}
	}
}

func TestBuildCSV_NoTrailingNewline(t *testing.T) {
	records := []domain.CaptureRecord{{Email: "a@x.com", CapturedAt: "2024-01-15T10:00:00Z"}}
	content := BuildCSV(records, pinnedFormatter)
	assert.False(t, strings.HasSuffix(content, "\n"))
}

func TestRow_NilFormatterPassesThrough(t *testing.T) {
	row := Row(domain.CaptureRecord{Email: "a@x.com", CapturedAt: "raw"}, nil)
	assert.Equal(t, []string{"a@x.com", "", "", "", "", "raw", ""}, row)
}
