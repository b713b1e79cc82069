// Package simulator is a local stand-in for the inspection server. It serves
// the same API surface the harness drives, with scripted job outcomes, so the
// harness itself can be exercised without a product deployment.
package simulator

import (
	"fmt"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

type simScan struct {
	id   string
	name string
	typ  string
}

type simJob struct {
	id       string
	scanID   string
	scanName string
	polls    int
	done     bool
	status   domain.ScanStatus
	reportID string
	message  string
}

// Simulator is safe for concurrent requests; every handler goes through mu.
type Simulator struct {
	app      *fiber.App
	secret   []byte
	username string
	password string

	mu             sync.Mutex
	scans          map[string]*simScan
	jobs           map[string]*simJob
	reports        map[string]product.Report
	credentials    map[string]product.CredentialPayload
	sources        map[string]product.SourcePayload
	scanHosts      map[string][]string
	outcomes       map[string]domain.ScanStatus
	stalled        map[string]bool
	submissions    map[string]int
	pollsUntilDone int

	listener net.Listener
	baseURL  string
}

// New creates a simulator accepting the given login. Job outcomes default to
// completed after one in-progress poll; see SetOutcome, SetStalled and
// SetPollsUntilDone.
func New(username, password string) *Simulator {
	s := &Simulator{
		secret:         []byte(uuid.NewString()),
		username:       username,
		password:       password,
		scans:          make(map[string]*simScan),
		jobs:           make(map[string]*simJob),
		reports:        make(map[string]product.Report),
		credentials:    make(map[string]product.CredentialPayload),
		sources:        make(map[string]product.SourcePayload),
		scanHosts:      make(map[string][]string),
		outcomes:       make(map[string]domain.ScanStatus),
		stalled:        make(map[string]bool),
		submissions:    make(map[string]int),
		pollsUntilDone: 1,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "Discovery Server Simulator",
		DisableStartupMessage: true,
	})
	s.registerRoutes()

	return s
}

// Start serves on a random loopback port. BaseURL is valid afterwards.
func (s *Simulator) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	s.listener = ln
	s.baseURL = fmt.Sprintf("http://%s", ln.Addr().String())

	go func() {
		_ = s.app.Listener(ln)
	}()
	return nil
}

// Run serves on the given address and blocks.
func (s *Simulator) Run(addr string) error {
	return s.app.Listen(addr)
}

// Stop shuts the server down.
func (s *Simulator) Stop() error {
	return s.app.Shutdown()
}

func (s *Simulator) BaseURL() string {
	return s.baseURL
}

// Addr returns host and port of a started simulator.
func (s *Simulator) Addr() (string, uint) {
	if s.listener == nil {
		return "", 0
	}
	tcp := s.listener.Addr().(*net.TCPAddr)
	return tcp.IP.String(), uint(tcp.Port)
}

// SetOutcome scripts the terminal status jobs of the named scan reach.
func (s *Simulator) SetOutcome(scanName string, status domain.ScanStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[scanName] = status
}

// SetStalled keeps jobs of the named scan in running state forever.
func (s *Simulator) SetStalled(scanName string, stalled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stalled[scanName] = stalled
}

// SetPollsUntilDone sets how many status polls a job reports running before
// turning terminal.
func (s *Simulator) SetPollsUntilDone(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollsUntilDone = n
}

// Submissions returns how many scans were created under the given name.
func (s *Simulator) Submissions(scanName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions[scanName]
}
