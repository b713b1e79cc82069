package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	scanPort "gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/port"
	appContext "gitlab.apk-group.net/siem/qa/discovery-harness/pkg/context"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

// Options controls the poll loop and the overall run deadline.
type Options struct {
	PollInterval    time.Duration
	MaxPollInterval time.Duration
	Timeout         time.Duration
}

func OptionsFromConfig(cfg config.CacheConfig) Options {
	return Options{
		PollInterval:    cfg.PollInterval(),
		MaxPollInterval: cfg.MaxPollInterval(),
		Timeout:         cfg.Timeout(),
	}
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.MaxPollInterval < o.PollInterval {
		o.MaxPollInterval = o.PollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Minute
	}
	return o
}

// entry is either pending (done still open, a run owns it) or complete
// (done closed, result/err immutable). Fields other than done are written
// only by the owning run before done is closed.
type entry struct {
	done   chan struct{}
	result domain.ScanResult
	err    error
	cancel context.CancelFunc
}

type service struct {
	client scanPort.Client
	store  scanPort.ResultStore
	opts   Options

	mu      sync.Mutex
	entries map[string]*entry
}

// NewScanCache creates the session scan cache. store may be nil; when set it
// is consulted before submitting and updated after successful runs, as a
// best-effort bridge between test worker processes.
func NewScanCache(client scanPort.Client, store scanPort.ResultStore, opts Options) scanPort.Service {
	return &service{
		client:  client,
		store:   store,
		opts:    opts.withDefaults(),
		entries: make(map[string]*entry),
	}
}

func (s *service) GetOrRun(ctx context.Context, def domain.ScanDefinition) (domain.ScanResult, error) {
	key := def.IdentityKey()

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return s.await(ctx, key, e)
	}

	// The run gets its own context so a waiter giving up early does not kill
	// the execution other callers are waiting on. Each run carries a trace ID
	// so log lines from concurrent runs stay attributable.
	runCtx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	runCtx = appContext.NewAppContextWithTracing(runCtx, uuid.NewString())
	e := &entry{done: make(chan struct{}), cancel: cancel}
	s.entries[key] = e
	s.mu.Unlock()

	logger.InfoContextWithFields(ctx, "Scan cache: starting run", map[string]interface{}{
		"scan":         def.Name,
		"identity_key": key,
	})
	go s.run(runCtx, key, def, e)

	return s.await(ctx, key, e)
}

func (s *service) Invalidate(def domain.ScanDefinition) {
	key := def.IdentityKey()

	s.mu.Lock()
	e := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	if e != nil {
		e.cancel()
		logger.Info("Scan cache: invalidated entry for key %s", key)
	}
}

func (s *service) Reset() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range entries {
		e.cancel()
	}
	logger.Info("Scan cache: cleared %d entries", len(entries))
}

// await blocks until the entry's run finishes or the caller's own context
// expires. A caller timing out leaves the entry untouched: the run keeps
// going for everyone else.
func (s *service) await(ctx context.Context, key string, e *entry) (domain.ScanResult, error) {
	select {
	case <-e.done:
		return e.result, e.err
	case <-ctx.Done():
		return domain.ScanResult{}, &domain.ScanTimeoutError{IdentityKey: key}
	}
}

// run executes the scan and publishes the outcome into the entry. It is the
// only writer of e.result and e.err.
func (s *service) run(ctx context.Context, key string, def domain.ScanDefinition, e *entry) {
	defer e.cancel()
	start := time.Now()

	if s.store != nil {
		cached, err := s.store.Find(ctx, key)
		if err != nil {
			logger.WarnContext(ctx, "Scan cache: shared store lookup for scan %q failed: %v", def.Name, err)
		} else if cached != nil && cached.Status == domain.StatusCompleted {
			logger.InfoContext(ctx, "Scan cache: shared store hit for scan %q", def.Name)
			e.result = *cached
			close(e.done)
			return
		}
	}

	res, runErr := s.execute(ctx, def)
	finished := time.Now()

	if runErr != nil {
		if ctx.Err() != nil {
			// Timed out (or canceled by Invalidate/Reset). Drop the pending
			// entry so a later call may retry instead of deadlocking on a
			// stale marker. Never cached.
			s.mu.Lock()
			if s.entries[key] == e {
				delete(s.entries, key)
			}
			s.mu.Unlock()

			e.err = &domain.ScanTimeoutError{IdentityKey: key, Elapsed: finished.Sub(start)}
			logger.WarnContext(ctx, "Scan cache: run for scan %q abandoned: %v", def.Name, e.err)
			close(e.done)
			return
		}

		// A transport failure from the server counts as a run failure and is
		// cached like any failed terminal status: expensive jobs are not
		// re-run on every failed assertion.
		res = domain.ScanResult{
			Status:  domain.StatusFailed,
			Message: runErr.Error(),
		}
	}

	res.IdentityKey = key
	res.StartedAt = start
	res.FinishedAt = finished
	e.result = res

	if res.Status == domain.StatusCompleted {
		logger.InfoContextWithFields(ctx, "Scan cache: run completed", map[string]interface{}{
			"scan":      def.Name,
			"job_id":    res.JobID,
			"report_id": res.ReportID,
			"duration":  finished.Sub(start).String(),
		})
		if s.store != nil {
			if err := s.store.Save(ctx, res); err != nil {
				logger.WarnContext(ctx, "Scan cache: shared store save for scan %q failed: %v", def.Name, err)
			}
		}
	} else {
		e.err = &domain.ScanExecutionError{IdentityKey: key, Status: res.Status, Message: res.Message}
		logger.WarnContext(ctx, "Scan cache: run for scan %q failed: %v", def.Name, e.err)
	}

	close(e.done)
}

// execute performs one full submit-and-poll cycle.
func (s *service) execute(ctx context.Context, def domain.ScanDefinition) (domain.ScanResult, error) {
	scanID, err := s.client.CreateScan(ctx, def)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("create scan: %w", err)
	}

	jobID, err := s.client.StartScan(ctx, scanID)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("start scan: %w", err)
	}

	js, err := s.waitForTerminal(ctx, jobID)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("poll scan job %s: %w", jobID, err)
	}

	return domain.ScanResult{
		ScanID:   scanID,
		JobID:    jobID,
		ReportID: js.ReportID,
		Status:   js.Status,
		Message:  js.Message,
	}, nil
}
