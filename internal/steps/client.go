package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/scenario"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerClientSteps(sc *godog.ScenarioContext) {
	sc.Step(`^Admin creates a client with random data$`, s.createClient)
	sc.Step(`^Admin creates a client activated on "([^"]*)"$`, s.createClientActivatedOn)
}

func (s *Steps) createClient(ctx context.Context) error {
	date, err := s.businessDate(ctx)
	if err != nil {
		return err
	}
	return s.createClientActivatedOn(ctx, date)
}

func (s *Steps) createClientActivatedOn(ctx context.Context, date string) error {
	externalID := utils.ExternalID()
	resp, err := s.API.CreateClient(ctx, &domain.CreateClientRequest{
		OfficeID:       domain.HeadOfficeID,
		LegalFormID:    domain.LegalFormPerson,
		Firstname:      "E2E",
		Lastname:       fmt.Sprintf("Client %s", externalID[:8]),
		Active:         true,
		ActivationDate: date,
		ExternalID:     externalID,
		DateFormat:     utils.DateFormat,
		Locale:         utils.Locale,
	})
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyClientCreateResponse, resp)
	s.Logger.Debug("client created", zap.Int64("client_id", resp.ClientID), zap.String("external_id", externalID))
	return nil
}
