package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the surface step packages need from the scenario context.
type TestContext interface {
	POST(path string, body any) error
	POSTWithHeaders(path string, body any, headers map[string]string) error
	POSTMultipart(path string, fields map[string]string, fileField, contentType string, file []byte) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	ResponseContains(text string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte

	Email(name string) string
	AdminHeaders() map[string]string
	Headers(name string) map[string]string
	SetToken(name, token string)
	PrincipalID(name string) string
	SetPrincipalID(name, id string)
	LastConfession() string
	SetLastConfession(id, by string)
	LastAuthor() string
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the confessional service is running$`, steps.serviceIsRunning)

	ctx.Step(`^I GET "([^"]*)" without authorization$`, steps.getWithoutAuth)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response should not reveal "([^"]*)"$`, steps.responseShouldNotReveal)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health/ready", nil); err != nil {
		return err
	}
	return s.responseStatusShouldBe(ctx, 200)
}

func (s *commonSteps) getWithoutAuth(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, actualStatus, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, field string) error {
	if !s.tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain field: %s\nResponse: %s", field, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if actual := fmt.Sprint(value); actual != expectedValue {
		return fmt.Errorf("expected field %s to equal %s but got %s", field, expectedValue, actual)
	}
	return nil
}

// responseShouldNotReveal fails when the body carries the principal's id or email.
func (s *commonSteps) responseShouldNotReveal(ctx context.Context, name string) error {
	body := string(s.tc.GetLastResponseBody())
	for _, needle := range []string{s.tc.PrincipalID(name), s.tc.Email(name)} {
		if needle != "" && strings.Contains(body, needle) {
			return fmt.Errorf("response reveals %s of %s\nResponse: %s", needle, name, body)
		}
	}
	return nil
}
