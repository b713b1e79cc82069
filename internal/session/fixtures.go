package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

// EnsureCredential registers the credential on the server under a unique
// name and returns its ID with a cleanup func. Cleanup failures are logged,
// not returned: teardown must keep going.
func (s *Session) EnsureCredential(ctx context.Context, cred config.Credential) (string, func(), error) {
	name := fmt.Sprintf("%s-%s", cred.Name, uuid.NewString())

	id, err := s.API().CreateCredential(ctx, product.CredentialPayload{
		Name:       name,
		Type:       cred.Type,
		Username:   cred.Username,
		Password:   cred.Password,
		SSHKeyFile: cred.SSHKeyFile,
	})
	if err != nil {
		return "", nil, fmt.Errorf("create credential %q: %w", cred.Name, err)
	}

	cleanup := func() {
		if err := s.API().DeleteCredential(context.Background(), id); err != nil {
			logger.Warn("Fixture cleanup: delete credential %s: %v", id, err)
		}
	}
	return id, cleanup, nil
}

// EnsureSource registers a source for the host bound to an already created
// credential, returning its ID with a cleanup func.
func (s *Session) EnsureSource(ctx context.Context, host config.HostConfig, credentialID string) (string, func(), error) {
	name := fmt.Sprintf("%s-%s", host.Name, uuid.NewString())

	sourceType := host.Provider
	if sourceType == "" {
		sourceType = "network"
	}

	id, err := s.API().CreateSource(ctx, product.SourcePayload{
		Name:       name,
		Type:       sourceType,
		Hosts:      []string{host.Address},
		Credential: credentialID,
	})
	if err != nil {
		return "", nil, fmt.Errorf("create source for host %q: %w", host.Name, err)
	}

	cleanup := func() {
		if err := s.API().DeleteSource(context.Background(), id); err != nil {
			logger.Warn("Fixture cleanup: delete source %s: %v", id, err)
		}
	}
	return id, cleanup, nil
}
