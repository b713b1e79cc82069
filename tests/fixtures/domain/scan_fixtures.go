package domain

import (
	"time"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

// NewTestScanDefinition creates a basic scan definition with sensible defaults
func NewTestScanDefinition() domain.ScanDefinition {
	return domain.ScanDefinition{
		Name:           "test-scan",
		Type:           domain.ScanTypeNetwork,
		Hosts:          []string{"host-a", "host-b"},
		CredentialName: "root-password",
		Options: map[string]string{
			"max-concurrency": "25",
			"facts":           "all",
		},
	}
}

// NewTestScanDefinitionNamed creates a definition differing only in name
func NewTestScanDefinitionNamed(name string) domain.ScanDefinition {
	def := NewTestScanDefinition()
	def.Name = name
	return def
}

// NewTestScanDefinitionWithHosts creates a definition targeting the given hosts
func NewTestScanDefinitionWithHosts(hosts ...string) domain.ScanDefinition {
	def := NewTestScanDefinition()
	def.Hosts = hosts
	return def
}

// NewTestScanResult creates a terminal result for the definition
func NewTestScanResult(def domain.ScanDefinition, status domain.ScanStatus) domain.ScanResult {
	return domain.ScanResult{
		IdentityKey: def.IdentityKey(),
		ScanID:      "scan-1",
		JobID:       "job-1",
		ReportID:    "report-1",
		Status:      status,
		StartedAt:   time.Now().Add(-time.Minute),
		FinishedAt:  time.Now(),
	}
}

// NewTestConfig creates a minimal valid harness configuration
func NewTestConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Hostname: "scanner.test.local",
			Port:     8443,
			Https:    true,
			Username: "admin",
			Password: "pass",
		},
		Hosts: []config.HostConfig{
			{Name: "host-a", Address: "192.168.50.10", Credential: "root-password"},
			{Name: "host-b", Address: "192.168.50.11", Credential: "root-password"},
		},
		Credentials: []config.Credential{
			{Name: "root-password", Type: "network", Username: "root", Password: "redhat"},
		},
		Scans: []config.ScanConfig{
			{
				Name:       "test-scan",
				Type:       "network",
				Hosts:      []string{"host-a", "host-b"},
				Credential: "root-password",
			},
		},
	}
}
