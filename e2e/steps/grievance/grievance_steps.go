package grievance

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers grievance intake, status and analytics steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &grievanceSteps{tc: tc}

	ctx.Step(`^a citizen with a fresh WhatsApp number$`, steps.freshNumber)
	ctx.Step(`^the citizen files a grievance "([^"]*)" for department "([^"]*)"$`, steps.fileGrievance)
	ctx.Step(`^the citizen files the same grievance again$`, steps.fileAgain)
	ctx.Step(`^I set the grievance status to "([^"]*)"$`, steps.setStatus)
	ctx.Step(`^I fetch the grievance$`, steps.fetchGrievance)
	ctx.Step(`^I request analytics$`, steps.requestAnalytics)
	ctx.Step(`^the grievance id should be the normalized number$`, steps.idShouldBeNormalized)
}

type grievanceSteps struct {
	tc         TestContext
	digits     string
	lastFiling map[string]interface{}
}

func (s *grievanceSteps) freshNumber(ctx context.Context) error {
	// Unique per run so repeated suites never collide on the one-grievance rule.
	s.digits = fmt.Sprintf("1%d", time.Now().UnixNano()%1e10)
	return nil
}

func (s *grievanceSteps) fileGrievance(ctx context.Context, title, department string) error {
	s.lastFiling = map[string]interface{}{
		"title":         title,
		"description":   "filed by the end-to-end suite",
		"department":    department,
		"anonymity":     false,
		"contactNumber": "whatsapp:+" + s.digits,
	}
	return s.tc.POST("/grievances", s.lastFiling)
}

func (s *grievanceSteps) fileAgain(ctx context.Context) error {
	if s.lastFiling == nil {
		return fmt.Errorf("no grievance filed in this scenario")
	}
	return s.tc.POST("/grievances", s.lastFiling)
}

func (s *grievanceSteps) setStatus(ctx context.Context, status string) error {
	return s.tc.POST("/grievances/status", map[string]interface{}{
		"grievanceId": s.digits,
		"status":      status,
	})
}

func (s *grievanceSteps) fetchGrievance(ctx context.Context) error {
	return s.tc.GET("/grievances/"+s.digits, nil)
}

func (s *grievanceSteps) requestAnalytics(ctx context.Context) error {
	return s.tc.GET("/analytics", nil)
}

func (s *grievanceSteps) idShouldBeNormalized(ctx context.Context) error {
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	if id != s.digits {
		return fmt.Errorf("expected id %q, got %v", s.digits, id)
	}
	return nil
}
