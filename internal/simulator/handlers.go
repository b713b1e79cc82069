package simulator

import (
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createScanRequest struct {
	Name       string            `json:"name"`
	Type       string            `json:"scan_type"`
	Hosts      []string          `json:"hosts"`
	Credential string            `json:"credential"`
	Options    map[string]string `json:"options"`
}

func (s *Simulator) registerRoutes() {
	s.app.Post("/api/v1/token/", s.login)

	api := s.app.Group("/api/v1", s.authMiddleware())
	api.Post("/scans/", s.createScan)
	api.Post("/scans/:id/jobs/", s.startScan)
	api.Get("/jobs/:id/", s.getScanJob)
	api.Get("/reports/:id/", s.getReport)
	api.Post("/credentials/", s.createCredential)
	api.Delete("/credentials/:id/", s.deleteCredential)
	api.Post("/sources/", s.createSource)
	api.Delete("/sources/:id/", s.deleteSource)
}

func (s *Simulator) authMiddleware() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: s.secret},
		TokenLookup: "header:Authorization",
		AuthScheme:  "Token",
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		},
	})
}

func (s *Simulator) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Username != s.username || req.Password != s.password {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	claims := jwt.RegisteredClaims{
		Subject:   req.Username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"token": token})
}

func (s *Simulator) createScan(c *fiber.Ctx) error {
	var req createScanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Name == "" || len(req.Hosts) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "scan name and hosts are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scan := &simScan{id: uuid.NewString(), name: req.Name, typ: req.Type}
	s.scans[scan.id] = scan
	s.scanHosts[scan.id] = append([]string(nil), req.Hosts...)
	s.submissions[req.Name]++

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": scan.id})
}

func (s *Simulator) startScan(c *fiber.Ctx) error {
	scanID := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "scan not found")
	}

	job := &simJob{
		id:       uuid.NewString(),
		scanID:   scanID,
		scanName: scan.name,
		status:   domain.StatusCreated,
	}
	s.jobs[job.id] = job

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": job.id})
}

func (s *Simulator) getScanJob(c *fiber.Ctx) error {
	jobID := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "scan job not found")
	}

	if !job.done {
		job.polls++
		switch {
		case s.stalled[job.scanName]:
			job.status = domain.StatusRunning
		case job.polls > s.pollsUntilDone:
			s.finishJob(job)
		default:
			job.status = domain.StatusRunning
		}
	}

	return c.JSON(fiber.Map{
		"id":             job.id,
		"status":         string(job.status),
		"report_id":      job.reportID,
		"status_message": job.message,
	})
}

// finishJob moves the job to its scripted terminal state; completed jobs get
// a report synthesized from the scan's host list. Callers hold mu.
func (s *Simulator) finishJob(job *simJob) {
	job.done = true
	job.status = domain.StatusCompleted
	if outcome, ok := s.outcomes[job.scanName]; ok {
		job.status = outcome
	}

	if job.status != domain.StatusCompleted {
		job.message = "scan " + job.scanName + " ended with status " + string(job.status)
		return
	}

	facts := make([]map[string]interface{}, 0, len(s.scanHosts[job.scanID]))
	for _, host := range s.scanHosts[job.scanID] {
		facts = append(facts, map[string]interface{}{
			"connection_host": host,
			"ip_address":      host,
			"hostname":        host,
			"os_release":      "Fedora release 38",
		})
	}

	report := product.Report{
		ID:      uuid.NewString(),
		Sources: []product.ReportSource{{SourceName: job.scanName, Facts: facts}},
	}
	s.reports[report.ID] = report
	job.reportID = report.ID
}

func (s *Simulator) getReport(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[c.Params("id")]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "report not found")
	}
	return c.JSON(report)
}

func (s *Simulator) createCredential(c *fiber.Ctx) error {
	var payload product.CredentialPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.credentials[id] = payload
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Simulator) deleteCredential(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	if _, ok := s.credentials[id]; !ok {
		return fiber.NewError(fiber.StatusNotFound, "credential not found")
	}
	delete(s.credentials, id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Simulator) createSource(c *fiber.Ctx) error {
	var payload product.SourcePayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sources[id] = payload
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Simulator) deleteSource(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	if _, ok := s.sources[id]; !ok {
		return fiber.NewError(fiber.StatusNotFound, "source not found")
	}
	delete(s.sources, id)
	return c.SendStatus(fiber.StatusNoContent)
}
