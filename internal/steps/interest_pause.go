package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/scenario"
	"github.com/segyhp/loan-e2e/internal/table"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerInterestPauseSteps(sc *godog.ScenarioContext) {
	sc.Step(`^Admin adds an interest pause from "([^"]*)" to "([^"]*)"$`, s.addInterestPause)
	sc.Step(`^Admin tries to add an interest pause from "([^"]*)" to "([^"]*)"$`, s.tryAddInterestPause)
	sc.Step(`^Admin deletes the last interest pause$`, s.deleteLastInterestPause)
	sc.Step(`^Loan has the following interest pauses:$`, s.interestPausesMatch)
	sc.Step(`^Loan has no interest pauses$`, s.noInterestPauses)
}

func (s *Steps) submitInterestPause(ctx context.Context, start, end string) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	resp, err := s.API.CreateInterestPause(ctx, loanID, &domain.InterestPauseRequest{
		StartDate:  start,
		EndDate:    end,
		DateFormat: utils.DateFormat,
		Locale:     utils.Locale,
	})
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyInterestPauseResponse, resp)
	return nil
}

func (s *Steps) addInterestPause(ctx context.Context, start, end string) error {
	return s.submitInterestPause(ctx, start, end)
}

func (s *Steps) tryAddInterestPause(ctx context.Context, start, end string) error {
	return s.expectFailure("interest pause", s.submitInterestPause(ctx, start, end))
}

func (s *Steps) deleteLastInterestPause(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	resp, err := scenario.Must[*domain.CommandResponse](s.ctx, scenario.KeyInterestPauseResponse)
	if err != nil {
		return err
	}
	if err := s.API.DeleteInterestPause(ctx, loanID, resp.ResourceID); err != nil {
		return err
	}
	s.ctx.Delete(scenario.KeyInterestPauseResponse)
	return nil
}

func (s *Steps) interestPausesMatch(ctx context.Context, dt *godog.Table) error {
	expected, err := table.FromGodog(dt)
	if err != nil {
		return err
	}
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	pauses, err := s.API.ListInterestPauses(ctx, loanID)
	if err != nil {
		return err
	}
	return table.ReconcileInterestPauses(expected, pauses)
}

func (s *Steps) noInterestPauses(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	pauses, err := s.API.ListInterestPauses(ctx, loanID)
	if err != nil {
		return err
	}
	if len(pauses) > 0 {
		return fmt.Errorf("loan %d has %d interest pauses, expected none", loanID, len(pauses))
	}
	return nil
}
