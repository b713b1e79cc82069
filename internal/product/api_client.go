package product

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

const (
	apiPrefix = "/api/v1"
	tokenPath = apiPrefix + "/token/"
)

// APIClient wraps the product's REST API. Each method is one blocking
// round-trip; the only state held between calls is the auth token.
type APIClient struct {
	baseURL  string
	username string
	password string
	token    string
	http     *http.Client
}

// NewAPIClient builds a client from the server section of the session
// configuration. It does not talk to the server; call Login first.
func NewAPIClient(cfg config.ServerConfig) *APIClient {
	transport := http.DefaultTransport
	if cfg.Https && !cfg.SslVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &APIClient{
		baseURL:  cfg.BaseURL(),
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Transport: transport,
			Timeout:   2 * time.Minute,
		},
	}
}

// Login obtains an auth token for all later calls.
func (c *APIClient) Login(ctx context.Context) error {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, tokenPath, tokenRequest{
		Username: c.username,
		Password: c.password,
	}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Logout drops the token; later calls are sent unauthenticated.
func (c *APIClient) Logout() {
	c.token = ""
}

// CreateScan registers a scan on the server and returns its ID.
func (c *APIClient) CreateScan(ctx context.Context, def domain.ScanDefinition) (string, error) {
	var resp idResponse
	err := c.do(ctx, http.MethodPost, apiPrefix+"/scans/", scanPayload{
		Name:       def.Name,
		Type:       string(def.Type),
		Hosts:      def.Hosts,
		Credential: def.CredentialName,
		Options:    def.Options,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// StartScan launches a job for the scan and returns the job ID.
func (c *APIClient) StartScan(ctx context.Context, scanID string) (string, error) {
	var resp idResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/scans/%s/jobs/", apiPrefix, scanID), struct{}{}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// GetScanJob reads the current state of a job.
func (c *APIClient) GetScanJob(ctx context.Context, jobID string) (domain.ScanJobStatus, error) {
	var resp scanJobResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/jobs/%s/", apiPrefix, jobID), nil, &resp)
	if err != nil {
		return domain.ScanJobStatus{}, err
	}
	return domain.ScanJobStatus{
		JobID:    resp.ID,
		Status:   domain.ScanStatus(resp.Status),
		ReportID: resp.ReportID,
		Message:  resp.Message,
	}, nil
}

// GetReport fetches the detailed report of a completed job.
func (c *APIClient) GetReport(ctx context.Context, reportID string) (Report, error) {
	var report Report
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/reports/%s/", apiPrefix, reportID), nil, &report)
	return report, err
}

// CreateCredential registers an auth credential, returning its ID.
func (c *APIClient) CreateCredential(ctx context.Context, payload CredentialPayload) (string, error) {
	var resp idResponse
	err := c.do(ctx, http.MethodPost, apiPrefix+"/credentials/", payload, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteCredential removes a credential by ID.
func (c *APIClient) DeleteCredential(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/credentials/%s/", apiPrefix, id), nil, nil)
}

// CreateSource registers a scan source, returning its ID.
func (c *APIClient) CreateSource(ctx context.Context, payload SourcePayload) (string, error) {
	var resp idResponse
	err := c.do(ctx, http.MethodPost, apiPrefix+"/sources/", payload, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteSource removes a source by ID.
func (c *APIClient) DeleteSource(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/sources/%s/", apiPrefix, id), nil, nil)
}

// do sends one request and decodes the response into out (when non-nil).
// Non-2xx statuses and transport errors become ExternalCallError.
func (c *APIClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	op := fmt.Sprintf("%s %s", method, path)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &ExternalCallError{Op: op, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ExternalCallError{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	logger.DebugContext(ctx, "API client: %s", op)
	resp, err := c.http.Do(req)
	if err != nil {
		return &ExternalCallError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ExternalCallError{Op: op, Code: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ExternalCallError{Op: op, Code: resp.StatusCode, Detail: snippet(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ExternalCallError{Op: op, Code: resp.StatusCode, Detail: snippet(raw), Err: err}
	}
	return nil
}
