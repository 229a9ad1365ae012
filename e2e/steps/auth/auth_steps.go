package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"confessional/e2e/steps/common"
)

const password = "correct-horse-battery"

var (
	pngEvidence = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	pdfEvidence = []byte("%PDF-1.7\n%fake document\n")
)

// RegisterSteps registers registration and login step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc common.TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^"([^"]*)" registers with image evidence$`, steps.registerWithImage)
	ctx.Step(`^"([^"]*)" registers with a PDF as evidence$`, steps.registerWithPDF)
	ctx.Step(`^"([^"]*)" registers without evidence$`, steps.registerWithoutEvidence)
	ctx.Step(`^"([^"]*)" logs in$`, steps.logIn)
	ctx.Step(`^"([^"]*)" logs in with a wrong password$`, steps.logInWrongPassword)
	ctx.Step(`^"([^"]*)" is a pending member$`, steps.pendingMember)
	ctx.Step(`^"([^"]*)" is a verified member$`, steps.verifiedMember)
}

type authSteps struct {
	tc common.TestContext
}

func (s *authSteps) register(name, contentType string, evidence []byte) error {
	fields := map[string]string{"email": s.tc.Email(name), "password": password}
	if err := s.tc.POSTMultipart("/auth/register", fields, "evidence", contentType, evidence); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		principalID, err := s.tc.GetResponseField("principal_id")
		if err != nil {
			return err
		}
		s.tc.SetPrincipalID(name, principalID.(string))
	}
	return nil
}

func (s *authSteps) registerWithImage(ctx context.Context, name string) error {
	return s.register(name, "image/png", pngEvidence)
}

func (s *authSteps) registerWithPDF(ctx context.Context, name string) error {
	return s.register(name, "application/pdf", pdfEvidence)
}

func (s *authSteps) registerWithoutEvidence(ctx context.Context, name string) error {
	return s.register(name, "", nil)
}

func (s *authSteps) login(name, pw string) error {
	return s.tc.POST("/auth/login", map[string]string{"email": s.tc.Email(name), "password": pw})
}

func (s *authSteps) logIn(ctx context.Context, name string) error {
	if err := s.login(name, password); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("login for %s failed with status %d: %s", name, status, s.tc.GetLastResponseBody())
	}
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	s.tc.SetToken(name, token.(string))
	return nil
}

func (s *authSteps) logInWrongPassword(ctx context.Context, name string) error {
	return s.login(name, "definitely-not-it")
}

func (s *authSteps) pendingMember(ctx context.Context, name string) error {
	if err := s.registerWithImage(ctx, name); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("registration for %s failed with status %d", name, status)
	}
	return s.logIn(ctx, name)
}

func (s *authSteps) verifiedMember(ctx context.Context, name string) error {
	if err := s.registerWithImage(ctx, name); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("registration for %s failed with status %d", name, status)
	}
	path := fmt.Sprintf("/admin/principals/%s/approve", s.tc.PrincipalID(name))
	if err := s.tc.POSTWithHeaders(path, nil, s.tc.AdminHeaders()); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("approving %s failed with status %d", name, status)
	}
	return s.logIn(ctx, name)
}
