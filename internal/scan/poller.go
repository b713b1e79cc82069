package scan

import (
	"context"
	"time"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

// waitForTerminal polls the job until it reaches a terminal state or the
// context expires. The interval doubles after every poll up to the configured
// cap; the wait itself stays responsive to cancellation.
func (s *service) waitForTerminal(ctx context.Context, jobID string) (domain.ScanJobStatus, error) {
	interval := s.opts.PollInterval

	for {
		js, err := s.client.GetScanJob(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return js, ctx.Err()
			}
			return js, err
		}
		if js.Status.IsTerminal() {
			return js, nil
		}

		logger.DebugContext(ctx, "Scan cache: job %s is %s, next poll in %s", jobID, js.Status, interval)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return js, ctx.Err()
		case <-timer.C:
		}

		interval *= 2
		if interval > s.opts.MaxPollInterval {
			interval = s.opts.MaxPollInterval
		}
	}
}
