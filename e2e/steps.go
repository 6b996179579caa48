package e2e

import (
	"github.com/cucumber/godog"

	"civicdesk/e2e/steps/auth"
	"civicdesk/e2e/steps/common"
	"civicdesk/e2e/steps/grievance"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register staff authentication steps
	auth.RegisterSteps(ctx, tc)

	// Register grievance intake, status and analytics steps
	grievance.RegisterSteps(ctx, tc)
}
