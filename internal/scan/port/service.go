package port

import (
	"context"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

type Service interface {
	// GetOrRun returns the cached result for the definition's identity key,
	// running the scan first if no result exists yet. Concurrent callers for
	// one key share a single execution.
	GetOrRun(ctx context.Context, def domain.ScanDefinition) (domain.ScanResult, error)
	// Invalidate removes a cached entry, canceling its run if one is in
	// flight, so the next GetOrRun executes again.
	Invalidate(def domain.ScanDefinition)
	// Reset cancels all in-flight runs and clears every entry. Called at
	// session teardown.
	Reset()
}

// ResultStore is an optional second-level store shared between test worker
// processes. Lookup and save failures must not fail a scan run.
type ResultStore interface {
	Find(ctx context.Context, identityKey string) (*domain.ScanResult, error)
	Save(ctx context.Context, result domain.ScanResult) error
}
