package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/event"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerEventSteps(sc *godog.ScenarioContext) {
	sc.Step(`^External event "([^"]*)" is (enabled|disabled)$`, s.configureEvent)

	sc.Step(`^"([^"]*)" event is raised for the loan$`, s.loanEventRaised)
	sc.Step(`^"([^"]*)" event is not raised for the loan$`, s.loanEventNotRaised)
	sc.Step(`^"([^"]*)" event is raised for the client$`, s.clientEventRaised)
	sc.Step(`^"([^"]*)" event is raised for the loan with data "([^"]*)" equal to "([^"]*)"$`, s.loanEventDataEquals)
	sc.Step(`^"([^"]*)" event is raised for the loan with flag "([^"]*)" set to (true|false)$`, s.loanEventFlagIs)
	sc.Step(`^"([^"]*)" event is raised for the loan with amount "([^"]*)" equal to ([\d.]+)$`, s.loanEventAmountEquals)
	sc.Step(`^"([^"]*)" event is raised for the loan with business date "([^"]*)"$`, s.loanEventBusinessDate)
	sc.Step(`^"([^"]*)" event is stored (\d+) times? for the loan$`, s.loanEventStored)
}

// configureEvent toggles publishing on the platform and mirrors the switch
// locally so assertions on disabled types are skipped
func (s *Steps) configureEvent(ctx context.Context, eventType, state string) error {
	enabled := state == "enabled"
	err := s.API.ConfigureExternalEvents(ctx, &domain.ExternalEventConfigurationRequest{
		ExternalEventConfigurations: map[string]bool{eventType: enabled},
	})
	if err != nil {
		return err
	}
	s.Events.SetEnabled(eventType, enabled)
	return nil
}

// eventRaisedFor builds a step asserting a fixed event type for the loan
func (s *Steps) eventRaisedFor(eventType string) func(context.Context) error {
	return func(ctx context.Context) error {
		return s.loanEventRaised(ctx, eventType)
	}
}

func (s *Steps) loanEvent(ctx context.Context, eventType string) (*event.Match, error) {
	loanID, err := s.loanID()
	if err != nil {
		return nil, err
	}
	match, err := s.Events.AssertEventRaised(ctx, eventType, loanID)
	if err != nil {
		return nil, err
	}
	if match.Skipped {
		s.Logger.Debug("event assertion skipped, type disabled", zap.String("type", eventType))
	}
	return match, nil
}

func (s *Steps) loanEventRaised(ctx context.Context, eventType string) error {
	_, err := s.loanEvent(ctx, eventType)
	return err
}

func (s *Steps) loanEventNotRaised(ctx context.Context, eventType string) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	return s.Events.AssertEventNotRaised(ctx, eventType, loanID)
}

func (s *Steps) clientEventRaised(ctx context.Context, eventType string) error {
	clientID, err := s.clientID()
	if err != nil {
		return err
	}
	_, err = s.Events.AssertEventRaised(ctx, eventType, clientID)
	return err
}

func (s *Steps) loanEventDataEquals(ctx context.Context, eventType, path, expected string) error {
	match, err := s.loanEvent(ctx, eventType)
	if err != nil {
		return err
	}
	return match.ExtractingData(path).IsEqualTo(expected)
}

func (s *Steps) loanEventFlagIs(ctx context.Context, eventType, path, state string) error {
	match, err := s.loanEvent(ctx, eventType)
	if err != nil {
		return err
	}
	if state == "true" {
		return match.ExtractingData(path).IsTrue()
	}
	return match.ExtractingData(path).IsFalse()
}

func (s *Steps) loanEventAmountEquals(ctx context.Context, eventType, path, expected string) error {
	want, err := decimal.NewFromString(expected)
	if err != nil {
		return err
	}
	match, err := s.loanEvent(ctx, eventType)
	if err != nil {
		return err
	}
	return match.ExtractingData(path).IsDecimal(want)
}

func (s *Steps) loanEventBusinessDate(ctx context.Context, eventType, date string) error {
	businessDate, err := utils.ParseDate(date)
	if err != nil {
		return err
	}
	match, err := s.loanEvent(ctx, eventType)
	if err != nil {
		return err
	}
	return match.ExtractingBusinessDate().IsEqualTo(businessDate.Format(utils.ISODateOnly))
}

// loanEventStored counts rows in the platform's event table; skipped
// without a database
func (s *Steps) loanEventStored(ctx context.Context, eventType string, times int) error {
	if s.StoredEvents == nil {
		s.Logger.Warn("stored event check skipped, no database configured")
		return godog.ErrSkip
	}
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	count, err := s.StoredEvents.CountFor(ctx, eventType, loanID)
	if err != nil {
		return apperrors.WrapDatabaseError(err)
	}
	if count != times {
		return fmt.Errorf("%s stored %d times for loan %d, expected %d", eventType, count, loanID, times)
	}
	return nil
}
