package config

import (
	"errors"
	"fmt"
)

var (
	ErrNoServerHostname = errors.New("server hostname is required")
	ErrNoHosts          = errors.New("at least one host is required")
	ErrNoCredentials    = errors.New("at least one credential is required")
)

// ConfigError is fatal at session start: the harness cannot run without a
// complete, consistent configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid harness configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid harness configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Validate enforces the required keys and cross references. Unknown YAML keys
// are already tolerated by the reader; missing required ones are not.
func (c Config) Validate() error {
	if c.Server.Hostname == "" {
		return ErrNoServerHostname
	}
	if len(c.Hosts) == 0 {
		return ErrNoHosts
	}
	if len(c.Credentials) == 0 {
		return ErrNoCredentials
	}

	creds := make(map[string]bool, len(c.Credentials))
	for _, cred := range c.Credentials {
		if cred.Name == "" {
			return errors.New("credential without a name")
		}
		if creds[cred.Name] {
			return fmt.Errorf("duplicate credential %q", cred.Name)
		}
		creds[cred.Name] = true
	}

	hosts := make(map[string]bool, len(c.Hosts))
	for _, host := range c.Hosts {
		if host.Name == "" || host.Address == "" {
			return fmt.Errorf("host %q must have a name and an address", host.Name)
		}
		if hosts[host.Name] {
			return fmt.Errorf("duplicate host %q", host.Name)
		}
		hosts[host.Name] = true
		if host.Credential != "" && !creds[host.Credential] {
			return fmt.Errorf("host %q references unknown credential %q", host.Name, host.Credential)
		}
	}

	for _, scan := range c.Scans {
		if scan.Name == "" {
			return errors.New("scan without a name")
		}
		if len(scan.Hosts) == 0 {
			return fmt.Errorf("scan %q has no hosts", scan.Name)
		}
		for _, h := range scan.Hosts {
			if !hosts[h] {
				return fmt.Errorf("scan %q references unknown host %q", scan.Name, h)
			}
		}
		if scan.Credential != "" && !creds[scan.Credential] {
			return fmt.Errorf("scan %q references unknown credential %q", scan.Name, scan.Credential)
		}
	}

	return nil
}

// Credential looks up a credential by name.
func (c Config) Credential(name string) (Credential, bool) {
	for _, cred := range c.Credentials {
		if cred.Name == name {
			return cred, true
		}
	}
	return Credential{}, false
}

// Host looks up a host by name.
func (c Config) Host(name string) (HostConfig, bool) {
	for _, host := range c.Hosts {
		if host.Name == name {
			return host, true
		}
	}
	return HostConfig{}, false
}
