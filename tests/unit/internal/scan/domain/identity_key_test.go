package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	domainFixtures "gitlab.apk-group.net/siem/qa/discovery-harness/tests/fixtures/domain"
)

func TestIdentityKey_StableAcrossOrdering(t *testing.T) {
	a := domainFixtures.NewTestScanDefinition()
	a.Hosts = []string{"host-a", "host-b", "host-c"}
	a.Options = map[string]string{"facts": "all", "max-concurrency": "25"}

	b := domainFixtures.NewTestScanDefinition()
	b.Hosts = []string{"host-c", "host-a", "host-b"}
	b.Options = map[string]string{"max-concurrency": "25", "facts": "all"}

	assert.Equal(t, a.IdentityKey(), b.IdentityKey())
}

func TestIdentityKey_NameDoesNotParticipate(t *testing.T) {
	a := domainFixtures.NewTestScanDefinitionNamed("nightly")
	b := domainFixtures.NewTestScanDefinitionNamed("smoke")

	assert.Equal(t, a.IdentityKey(), b.IdentityKey())
}

func TestIdentityKey_SensitiveToBehaviorFields(t *testing.T) {
	base := domainFixtures.NewTestScanDefinition()

	tests := []struct {
		name   string
		mutate func(d *domain.ScanDefinition)
	}{
		{"different type", func(d *domain.ScanDefinition) { d.Type = domain.ScanTypeVCenter }},
		{"different hosts", func(d *domain.ScanDefinition) { d.Hosts = []string{"host-z"} }},
		{"different credential", func(d *domain.ScanDefinition) { d.CredentialName = "other-cred" }},
		{"different option value", func(d *domain.ScanDefinition) { d.Options["facts"] = "default" }},
		{"extra option", func(d *domain.ScanDefinition) { d.Options["paramiko"] = "true" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := domainFixtures.NewTestScanDefinition()
			tt.mutate(&changed)
			assert.NotEqual(t, base.IdentityKey(), changed.IdentityKey())
		})
	}
}

func TestIdentityKey_FieldBoundariesAreUnambiguous(t *testing.T) {
	// Concatenation across field boundaries must not collide.
	a := domainFixtures.NewTestScanDefinitionWithHosts("host-ab")
	b := domainFixtures.NewTestScanDefinitionWithHosts("host-a", "b")

	assert.NotEqual(t, a.IdentityKey(), b.IdentityKey())
}

func TestScanStatus_IsTerminal(t *testing.T) {
	assert.True(t, domain.StatusCompleted.IsTerminal())
	assert.True(t, domain.StatusFailed.IsTerminal())
	assert.True(t, domain.StatusCanceled.IsTerminal())
	assert.False(t, domain.StatusCreated.IsTerminal())
	assert.False(t, domain.StatusPending.IsTerminal())
	assert.False(t, domain.StatusRunning.IsTerminal())
}
