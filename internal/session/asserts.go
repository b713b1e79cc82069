package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

// RequireScan fails the test unless the named scan completed. The scan runs
// on first use and is served from cache afterwards.
func RequireScan(t testing.TB, s *Session, name string) domain.ScanResult {
	t.Helper()

	result, err := s.Scan(context.Background(), name)
	require.NoError(t, err, "scan %q", name)
	return result
}

// SkipIfScanFailed skips the test, rather than failing it, when the named
// scan ended in a failed terminal state or timed out.
func SkipIfScanFailed(t testing.TB, s *Session, name string) domain.ScanResult {
	t.Helper()

	result, err := s.Scan(context.Background(), name)
	if err == nil {
		return result
	}

	var execErr *domain.ScanExecutionError
	var timeoutErr *domain.ScanTimeoutError
	if errors.As(err, &execErr) || errors.As(err, &timeoutErr) {
		t.Skipf("scan %q did not complete: %v", name, err)
	}
	require.NoError(t, err, "scan %q", name)
	return result
}

// RequireReport fetches the report behind a scan result, failing the test on
// any API error.
func RequireReport(t testing.TB, s *Session, result domain.ScanResult) product.Report {
	t.Helper()

	report, err := s.Report(context.Background(), result)
	require.NoError(t, err, "report %s", result.ReportID)
	return report
}

// AssertReportHasHost asserts the report contains facts for the address.
func AssertReportHasHost(t testing.TB, report product.Report, address string) bool {
	return assert.NotEmpty(t, report.FactsForHost(address),
		"report %s has no facts for host %s", report.ID, address)
}

// AssertFactEquals asserts one expected fact value for a host in the report.
func AssertFactEquals(t testing.TB, report product.Report, address, fact string, expected interface{}) bool {
	facts := report.FactsForHost(address)
	if !assert.NotEmpty(t, facts, "report %s has no facts for host %s", report.ID, address) {
		return false
	}

	for _, m := range facts {
		if actual, ok := m[fact]; ok {
			return assert.Equal(t, expected, actual, "fact %q for host %s", fact, address)
		}
	}
	return assert.Fail(t, "fact not collected", "fact %q for host %s missing from report %s", fact, address, report.ID)
}
