package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrScanNotConfigured = errors.New("scan not configured")

// ScanTimeoutError reports that a scan did not reach a terminal state in
// time. It is never cached: a later call for the same key may retry.
type ScanTimeoutError struct {
	IdentityKey string
	Elapsed     time.Duration
}

func (e *ScanTimeoutError) Error() string {
	return fmt.Sprintf("scan %s did not reach a terminal state after %s", shortKey(e.IdentityKey), e.Elapsed)
}

// ScanExecutionError reports a scan that ended in a failed or canceled
// terminal state. It is cached: every later caller for the key receives the
// same error until the entry is invalidated.
type ScanExecutionError struct {
	IdentityKey string
	Status      ScanStatus
	Message     string
}

func (e *ScanExecutionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("scan %s ended with status %s", shortKey(e.IdentityKey), e.Status)
	}
	return fmt.Sprintf("scan %s ended with status %s: %s", shortKey(e.IdentityKey), e.Status, e.Message)
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
