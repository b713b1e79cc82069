package product

// Wire payloads of the product API. Field names are the server's contract.

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type idResponse struct {
	ID string `json:"id"`
}

// CredentialPayload creates an auth credential on the server.
type CredentialPayload struct {
	Name       string `json:"name"`
	Type       string `json:"cred_type"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	SSHKeyFile string `json:"ssh_keyfile,omitempty"`
}

// SourcePayload creates a scan source (a host set bound to a credential).
type SourcePayload struct {
	Name       string   `json:"name"`
	Type       string   `json:"source_type"`
	Hosts      []string `json:"hosts"`
	Credential string   `json:"credential"`
}

type scanPayload struct {
	Name       string            `json:"name"`
	Type       string            `json:"scan_type"`
	Hosts      []string          `json:"hosts"`
	Credential string            `json:"credential,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
}

type scanJobResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ReportID string `json:"report_id,omitempty"`
	Message  string `json:"status_message,omitempty"`
}

// Report is the detailed output of a completed scan job.
type Report struct {
	ID      string         `json:"id"`
	Sources []ReportSource `json:"sources"`
}

// ReportSource groups the facts collected from one source.
type ReportSource struct {
	SourceName string                   `json:"source_name"`
	Facts      []map[string]interface{} `json:"facts"`
}

// FactsForHost returns the fact maps whose address or hostname fact matches
// the given value, across all sources.
func (r Report) FactsForHost(address string) []map[string]interface{} {
	var matched []map[string]interface{}
	for _, src := range r.Sources {
		for _, facts := range src.Facts {
			if facts["connection_host"] == address || facts["ip_address"] == address || facts["hostname"] == address {
				matched = append(matched, facts)
			}
		}
	}
	return matched
}
