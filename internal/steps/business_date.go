package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/scenario"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerBusinessDateSteps(sc *godog.ScenarioContext) {
	sc.Step(`^Admin sets the business date to "([^"]*)"$`, s.setBusinessDate)
	sc.Step(`^Admin checks that the business date is "([^"]*)"$`, s.checkBusinessDate)
}

func (s *Steps) setBusinessDate(ctx context.Context, date string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return err
	}
	err := s.API.SetBusinessDate(ctx, &domain.BusinessDateRequest{
		Type:       domain.BusinessDateType,
		Date:       date,
		DateFormat: utils.DateFormat,
		Locale:     utils.Locale,
	})
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyBusinessDate, date)
	return nil
}

func (s *Steps) checkBusinessDate(ctx context.Context, expected string) error {
	current, err := s.API.GetBusinessDate(ctx, domain.BusinessDateType)
	if err != nil {
		return err
	}
	if actual := utils.FormatLocalDate(current.Date); actual != expected {
		return fmt.Errorf("business date is %q, expected %q", actual, expected)
	}
	return nil
}

// businessDate returns the date set earlier in the scenario, or asks the
// platform for it
func (s *Steps) businessDate(ctx context.Context) (string, error) {
	if date, err := scenario.Must[string](s.ctx, scenario.KeyBusinessDate); err == nil {
		return date, nil
	}
	current, err := s.API.GetBusinessDate(ctx, domain.BusinessDateType)
	if err != nil {
		return "", err
	}
	date := utils.FormatLocalDate(current.Date)
	s.ctx.Put(scenario.KeyBusinessDate, date)
	return date, nil
}
