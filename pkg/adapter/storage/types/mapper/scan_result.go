package mapper

import (
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/adapter/storage/types"
)

func ScanResultDomain2Storage(result domain.ScanResult) *types.ScanResult {
	return &types.ScanResult{
		IdentityKey: result.IdentityKey,
		ScanID:      result.ScanID,
		JobID:       result.JobID,
		ReportID:    result.ReportID,
		Status:      string(result.Status),
		Message:     result.Message,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	}
}

func ScanResultStorage2Domain(row types.ScanResult) *domain.ScanResult {
	return &domain.ScanResult{
		IdentityKey: row.IdentityKey,
		ScanID:      row.ScanID,
		JobID:       row.JobID,
		ReportID:    row.ReportID,
		Status:      domain.ScanStatus(row.Status),
		Message:     row.Message,
		StartedAt:   row.StartedAt,
		FinishedAt:  row.FinishedAt,
	}
}
