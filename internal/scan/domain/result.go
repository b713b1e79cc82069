package domain

import "time"

// ScanStatus is the lifecycle state a scan job reports.
type ScanStatus string

const (
	StatusCreated   ScanStatus = "created"
	StatusPending   ScanStatus = "pending"
	StatusRunning   ScanStatus = "running"
	StatusCompleted ScanStatus = "completed"
	StatusFailed    ScanStatus = "failed"
	StatusCanceled  ScanStatus = "canceled"
)

// IsTerminal reports whether no further status transition can occur.
func (s ScanStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// ScanJobStatus is one observation of a submitted job.
type ScanJobStatus struct {
	JobID    string
	Status   ScanStatus
	ReportID string
	Message  string
}

// ScanResult is the terminal outcome of running a ScanDefinition. Created at
// most once per identity key per session; immutable after creation.
type ScanResult struct {
	IdentityKey string
	ScanID      string
	JobID       string
	ReportID    string
	Status      ScanStatus
	Message     string
	StartedAt   time.Time
	FinishedAt  time.Time
}
