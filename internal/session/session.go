// Package session owns the test-session lifecycle: one explicitly
// constructed object tying the configuration, the product clients and the
// scan cache together, torn down when the suite ends.
package session

import (
	"context"
	"fmt"
	"os"

	"gitlab.apk-group.net/siem/qa/discovery-harness/app"
	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

const (
	// EnvSkipScans skips the initial scan pass; scans still run lazily when
	// a test first asks for them.
	EnvSkipScans = "HARNESS_SKIP_SCANS"
	// EnvUIBrowser selects the browser backend for UI-facing tests.
	EnvUIBrowser = "HARNESS_UI_BROWSER"
)

type Session struct {
	container app.AppContainer
	defs      []domain.ScanDefinition
	skipScans bool
	browser   string
}

// New logs in to the server and prepares the session's scan definitions.
func New(ctx context.Context, container app.AppContainer) (*Session, error) {
	if err := container.APIClient().Login(ctx); err != nil {
		return nil, fmt.Errorf("session login: %w", err)
	}

	s := &Session{
		container: container,
		defs:      domain.DefinitionsFromConfig(container.Config()),
		skipScans: os.Getenv(EnvSkipScans) != "",
		browser:   os.Getenv(EnvUIBrowser),
	}
	if s.browser == "" {
		s.browser = "chrome"
	}

	logger.InfoWithFields("Session ready", map[string]interface{}{
		"scans":      len(s.defs),
		"skip_scans": s.skipScans,
	})
	return s, nil
}

// Close tears the session down: in-flight runs are canceled, the cache is
// cleared and the API token dropped.
func (s *Session) Close() {
	s.container.ScanCache().Reset()
	s.container.APIClient().Logout()
}

func (s *Session) Config() config.Config {
	return s.container.Config()
}

func (s *Session) API() *product.APIClient {
	return s.container.APIClient()
}

func (s *Session) CLI() *product.CLIRunner {
	return s.container.CLIRunner()
}

func (s *Session) Browser() string {
	return s.browser
}

func (s *Session) Definitions() []domain.ScanDefinition {
	return s.defs
}

// Definition finds a configured scan by name.
func (s *Session) Definition(name string) (domain.ScanDefinition, error) {
	for _, def := range s.defs {
		if def.Name == name {
			return def, nil
		}
	}
	return domain.ScanDefinition{}, fmt.Errorf("%w: %q", domain.ErrScanNotConfigured, name)
}

// Scan returns the cached result for the named scan, running it first if
// needed.
func (s *Session) Scan(ctx context.Context, name string) (domain.ScanResult, error) {
	def, err := s.Definition(name)
	if err != nil {
		return domain.ScanResult{}, err
	}
	return s.container.ScanCache().GetOrRun(ctx, def)
}

// Report fetches the detailed report behind a completed scan result.
func (s *Session) Report(ctx context.Context, result domain.ScanResult) (product.Report, error) {
	return s.container.APIClient().GetReport(ctx, result.ReportID)
}

// RunConfiguredScans is the initial scan pass: every configured definition is
// run (or served from cache) and the failures are returned by scan name. The
// pass is skipped entirely when HARNESS_SKIP_SCANS is set.
func (s *Session) RunConfiguredScans(ctx context.Context) map[string]error {
	failures := make(map[string]error)
	if s.skipScans {
		logger.Info("Initial scan pass skipped (%s set)", EnvSkipScans)
		return failures
	}

	for _, def := range s.defs {
		if _, err := s.container.ScanCache().GetOrRun(ctx, def); err != nil {
			failures[def.Name] = err
		}
	}
	return failures
}
