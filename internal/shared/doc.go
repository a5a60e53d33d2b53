// Package shared holds helpers used across packages that belong to no single
// layer. testutil contains log capture and record fixtures for tests.
package shared
