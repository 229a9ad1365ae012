package confession

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"confessional/e2e/steps/common"
)

// RegisterSteps registers posting, reading and reporting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc common.TestContext) {
	steps := &confessionSteps{tc: tc}

	ctx.Step(`^"([^"]*)" confesses "([^"]*)"$`, steps.confess)
	ctx.Step(`^"([^"]*)" likes the last confession$`, steps.like)
	ctx.Step(`^"([^"]*)" comments "([^"]*)" on the last confession$`, steps.comment)
	ctx.Step(`^"([^"]*)" reads the last confession$`, steps.read)
	ctx.Step(`^"([^"]*)" reads the feed$`, steps.feed)
	ctx.Step(`^"([^"]*)" reports the last confession for "([^"]*)"$`, steps.report)
}

type confessionSteps struct {
	tc common.TestContext
}

func (s *confessionSteps) confess(ctx context.Context, name, text string) error {
	if err := s.tc.POSTWithHeaders("/confessions", map[string]string{"text": text}, s.tc.Headers(name)); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	confessionID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SetLastConfession(confessionID.(string), name)
	return nil
}

func (s *confessionSteps) last() (string, error) {
	confessionID := s.tc.LastConfession()
	if confessionID == "" {
		return "", fmt.Errorf("no confession has been posted")
	}
	return "/confessions/" + confessionID, nil
}

func (s *confessionSteps) like(ctx context.Context, name string) error {
	path, err := s.last()
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders(path+"/like", nil, s.tc.Headers(name))
}

func (s *confessionSteps) comment(ctx context.Context, name, text string) error {
	path, err := s.last()
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders(path+"/comments", map[string]string{"text": text}, s.tc.Headers(name))
}

func (s *confessionSteps) read(ctx context.Context, name string) error {
	path, err := s.last()
	if err != nil {
		return err
	}
	return s.tc.GET(path, s.tc.Headers(name))
}

func (s *confessionSteps) feed(ctx context.Context, name string) error {
	return s.tc.GET("/confessions", s.tc.Headers(name))
}

func (s *confessionSteps) report(ctx context.Context, name, reason string) error {
	path, err := s.last()
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders(path+"/reports", map[string]string{"reason": reason}, s.tc.Headers(name))
}
