package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
)

// ScanType identifies the kind of inspection the server performs.
type ScanType string

const (
	ScanTypeNetwork   ScanType = "network"
	ScanTypeVCenter   ScanType = "vcenter"
	ScanTypeSatellite ScanType = "satellite"
)

// ScanDefinition describes one scan job to run against the server. It is
// built from configuration at session start and never mutated.
type ScanDefinition struct {
	Name           string
	Type           ScanType
	Hosts          []string
	CredentialName string
	Options        map[string]string
}

// IdentityKey returns a deterministic fingerprint of the behavior-affecting
// fields. Host and option ordering in the source configuration does not
// change the key; the display name does not participate at all, so two
// differently named but otherwise identical scans share one execution.
func (d ScanDefinition) IdentityKey() string {
	h := sha256.New()

	fmt.Fprintf(h, "type=%s\x00", d.Type)
	fmt.Fprintf(h, "credential=%s\x00", d.CredentialName)

	hosts := append([]string(nil), d.Hosts...)
	sort.Strings(hosts)
	for _, host := range hosts {
		fmt.Fprintf(h, "host=%s\x00", host)
	}

	keys := make([]string, 0, len(d.Options))
	for k := range d.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "option=%s=%s\x00", k, d.Options[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionsFromConfig builds the session's scan definitions from the
// validated configuration.
func DefinitionsFromConfig(cfg config.Config) []ScanDefinition {
	defs := make([]ScanDefinition, 0, len(cfg.Scans))
	for _, sc := range cfg.Scans {
		scanType := ScanType(sc.Type)
		if scanType == "" {
			scanType = ScanTypeNetwork
		}
		defs = append(defs, ScanDefinition{
			Name:           sc.Name,
			Type:           scanType,
			Hosts:          append([]string(nil), sc.Hosts...),
			CredentialName: sc.Credential,
			Options:        copyOptions(sc.Options),
		})
	}
	return defs
}

func copyOptions(options map[string]string) map[string]string {
	if options == nil {
		return nil
	}
	out := make(map[string]string, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}
