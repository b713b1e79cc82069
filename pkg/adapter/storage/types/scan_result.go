package types

import "time"

// ScanResult is the storage row shared between test worker processes.
type ScanResult struct {
	IdentityKey string    `gorm:"column:identity_key;primaryKey;size:64"`
	ScanID      string    `gorm:"column:scan_id;size:64"`
	JobID       string    `gorm:"column:job_id;size:64"`
	ReportID    string    `gorm:"column:report_id;size:64"`
	Status      string    `gorm:"column:status;size:20;not null"`
	Message     string    `gorm:"column:message;size:1024"`
	StartedAt   time.Time `gorm:"column:started_at;type:datetime"`
	FinishedAt  time.Time `gorm:"column:finished_at;type:datetime"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime;default:CURRENT_TIMESTAMP"`
}

func (ScanResult) TableName() string {
	return "scan_results"
}
