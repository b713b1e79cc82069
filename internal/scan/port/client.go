package port

import (
	"context"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

// Client is the slice of the server API the scan cache depends on. Each call
// is a single blocking round-trip; failures are never retried here.
type Client interface {
	CreateScan(ctx context.Context, def domain.ScanDefinition) (scanID string, err error)
	StartScan(ctx context.Context, scanID string) (jobID string, err error)
	GetScanJob(ctx context.Context, jobID string) (domain.ScanJobStatus, error)
}
