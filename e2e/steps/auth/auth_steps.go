package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GetResponseField(field string) (interface{}, error)
	GetAccessToken() string
	SetAccessToken(token string)
}

// RegisterSteps registers staff authentication step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^a new staff email$`, steps.newStaffEmail)
	ctx.Step(`^I sign up with password "([^"]*)"$`, steps.signUp)
	ctx.Step(`^I sign in with password "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I save the issued token$`, steps.saveIssuedToken)
}

type authSteps struct {
	tc    TestContext
	email string
}

func (s *authSteps) newStaffEmail(ctx context.Context) error {
	s.email = fmt.Sprintf("staff-%d@civicdesk.test", time.Now().UnixNano())
	return nil
}

func (s *authSteps) signUp(ctx context.Context, password string) error {
	return s.tc.POST("/auth/signup", map[string]interface{}{
		"email":    s.email,
		"password": password,
	})
}

func (s *authSteps) signIn(ctx context.Context, password string) error {
	return s.tc.POST("/auth/signin", map[string]interface{}{
		"email":    s.email,
		"password": password,
	})
}

func (s *authSteps) saveIssuedToken(ctx context.Context) error {
	tok, err := s.tc.GetResponseField("customToken")
	if err != nil {
		return err
	}
	str, ok := tok.(string)
	if !ok || str == "" {
		return fmt.Errorf("customToken is not a non-empty string: %v", tok)
	}
	s.tc.SetAccessToken(str)
	return nil
}
