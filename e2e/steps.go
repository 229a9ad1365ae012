package e2e

import (
	"github.com/cucumber/godog"

	"confessional/e2e/steps/admin"
	"confessional/e2e/steps/auth"
	"confessional/e2e/steps/common"
	"confessional/e2e/steps/confession"
)

// RegisterSteps wires every step package against one scenario's context.
func RegisterSteps(sc *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(sc, tc)
	auth.RegisterSteps(sc, tc)
	admin.RegisterSteps(sc, tc)
	confession.RegisterSteps(sc, tc)
}
