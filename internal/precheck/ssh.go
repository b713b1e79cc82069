// Package precheck verifies that configured scan targets are actually
// reachable before expensive scans run against them, so tests can skip
// instead of failing on a downed host.
package precheck

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

const dialTimeout = 10 * time.Second

// CheckHost dials the host over SSH and authenticates with its credential.
// A nil return means the target is scannable.
func CheckHost(ctx context.Context, host config.HostConfig, cred config.Credential) error {
	auth, err := authMethods(cred)
	if err != nil {
		return fmt.Errorf("host %s: %w", host.Name, err)
	}

	port := host.Port
	if port == 0 {
		port = 22
	}
	addr := fmt.Sprintf("%s:%d", host.Address, port)

	clientConfig := &ssh.ClientConfig{
		User: cred.Username,
		Auth: auth,
		// Targets are lab machines provisioned per test run.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("host %s is unreachable at %s: %w", host.Name, addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("host %s rejected ssh auth for credential %q: %w", host.Name, cred.Name, err)
	}

	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	logger.DebugContext(ctx, "Precheck: host %s reachable via ssh as %s", host.Name, cred.Username)
	return nil
}

// CheckAll prechecks every configured host that carries a credential,
// returning the failures keyed by host name.
func CheckAll(ctx context.Context, cfg config.Config) map[string]error {
	failures := make(map[string]error)
	for _, host := range cfg.Hosts {
		if host.Credential == "" {
			continue
		}
		cred, ok := cfg.Credential(host.Credential)
		if !ok {
			failures[host.Name] = fmt.Errorf("unknown credential %q", host.Credential)
			continue
		}
		if err := CheckHost(ctx, host, cred); err != nil {
			logger.WarnContext(ctx, "Precheck: %v", err)
			failures[host.Name] = err
		}
	}
	return failures
}

func authMethods(cred config.Credential) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cred.SSHKeyFile != "" {
		raw, err := os.ReadFile(cred.SSHKeyFile)
		if err != nil {
			return nil, fmt.Errorf("credential %q: read key file: %w", cred.Name, err)
		}
		signer, err := ssh.ParsePrivateKey(raw)
		if err != nil {
			return nil, fmt.Errorf("credential %q: parse key file: %w", cred.Name, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cred.Password != "" {
		methods = append(methods, ssh.Password(cred.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("credential %q has neither password nor key file", cred.Name)
	}
	return methods, nil
}
