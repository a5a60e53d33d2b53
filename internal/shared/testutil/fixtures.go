package testutil

import "leadexport/pkg/contracts/domain"

// CaptureRecords returns a mix of complete and minimal records, including
// values that need CSV escaping
func CaptureRecords() []domain.CaptureRecord {
	return []domain.CaptureRecord{
		{
			Email:      "jane@example.com",
			FirstName:  domain.StringPtr("Jane"),
			LastName:   domain.StringPtr("Doe"),
			Phone:      domain.StringPtr("+1 555 0100"),
			Company:    domain.StringPtr(`Acme, Inc."`),
			CapturedAt: "2024-01-15T10:00:00Z",
			PageTitle:  domain.StringPtr("Pricing\nPlans"),
		},
		{
			Email:      "a@x.com",
			CapturedAt: "2024-01-15T10:00:00Z",
		},
		{
			Email:      "raw@example.com",
			CapturedAt: "yesterday",
		},
	}
}
