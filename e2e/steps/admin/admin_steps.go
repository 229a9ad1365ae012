package admin

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"confessional/e2e/steps/common"
)

// RegisterSteps registers adjudication and moderation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc common.TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^the admin approves "([^"]*)"$`, steps.approve)
	ctx.Step(`^the admin rejects "([^"]*)"$`, steps.reject)
	ctx.Step(`^the admin bans "([^"]*)"$`, steps.ban)
	ctx.Step(`^the admin lists "([^"]*)" principals$`, steps.listPrincipals)
	ctx.Step(`^the admin lists open reports$`, steps.listReports)
	ctx.Step(`^the admin removes the last confession$`, steps.removeLast)
	ctx.Step(`^the admin bans the author of the last confession$`, steps.banAuthorOfLast)
	ctx.Step(`^"([^"]*)" tries to approve "([^"]*)"$`, steps.memberApproves)
}

type adminSteps struct {
	tc common.TestContext
}

func (s *adminSteps) principalAction(name, action string, body any, headers map[string]string) error {
	principalID := s.tc.PrincipalID(name)
	if principalID == "" {
		return fmt.Errorf("no principal registered as %s", name)
	}
	return s.tc.POSTWithHeaders(fmt.Sprintf("/admin/principals/%s/%s", principalID, action), body, headers)
}

func (s *adminSteps) approve(ctx context.Context, name string) error {
	return s.principalAction(name, "approve", nil, s.tc.AdminHeaders())
}

func (s *adminSteps) reject(ctx context.Context, name string) error {
	return s.principalAction(name, "reject", nil, s.tc.AdminHeaders())
}

func (s *adminSteps) ban(ctx context.Context, name string) error {
	return s.principalAction(name, "ban", map[string]bool{"banned": true}, s.tc.AdminHeaders())
}

func (s *adminSteps) memberApproves(ctx context.Context, actor, name string) error {
	return s.principalAction(name, "approve", nil, s.tc.Headers(actor))
}

func (s *adminSteps) listPrincipals(ctx context.Context, status string) error {
	return s.tc.GET("/admin/principals?status="+status, s.tc.AdminHeaders())
}

func (s *adminSteps) listReports(ctx context.Context) error {
	return s.tc.GET("/admin/reports", s.tc.AdminHeaders())
}

func (s *adminSteps) confessionAction(action string) error {
	confessionID := s.tc.LastConfession()
	if confessionID == "" {
		return fmt.Errorf("no confession has been posted")
	}
	return s.tc.POSTWithHeaders(fmt.Sprintf("/admin/confessions/%s/%s", confessionID, action), nil, s.tc.AdminHeaders())
}

func (s *adminSteps) removeLast(ctx context.Context) error {
	return s.confessionAction("remove")
}

func (s *adminSteps) banAuthorOfLast(ctx context.Context) error {
	return s.confessionAction("ban-author")
}
