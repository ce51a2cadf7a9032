package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/scenario"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerChargeSteps(sc *godog.ScenarioContext) {
	sc.Step(`^Admin adds charge (\d+) with ([\d.]+) amount due on "([^"]*)"$`, s.addCharge)
	sc.Step(`^Admin waives the last added charge$`, s.waiveLastCharge)
	sc.Step(`^The last added charge is waived$`, s.lastChargeWaived)
	sc.Step(`^The last added charge has ([\d.]+) outstanding$`, s.lastChargeOutstanding)
}

func (s *Steps) addCharge(ctx context.Context, chargeID int64, amount, dueDate string) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	value, err := utils.DecimalFromString(amount)
	if err != nil {
		return fmt.Errorf("charge amount %q: %w", amount, err)
	}
	resp, err := s.API.AddLoanCharge(ctx, loanID, &domain.AddLoanChargeRequest{
		ChargeID:   chargeID,
		Amount:     value,
		DueDate:    dueDate,
		ExternalID: utils.ExternalID(),
		DateFormat: utils.DateFormat,
		Locale:     utils.Locale,
	})
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyLoanChargeResponse, resp)
	return nil
}

func (s *Steps) lastChargeID() (int64, error) {
	resp, err := scenario.Must[*domain.CommandResponse](s.ctx, scenario.KeyLoanChargeResponse)
	if err != nil {
		return 0, err
	}
	return resp.ResourceID, nil
}

func (s *Steps) waiveLastCharge(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	chargeID, err := s.lastChargeID()
	if err != nil {
		return err
	}
	_, err = s.API.WaiveLoanCharge(ctx, loanID, chargeID)
	return err
}

func (s *Steps) lastCharge(ctx context.Context) (*domain.LoanCharge, error) {
	chargeID, err := s.lastChargeID()
	if err != nil {
		return nil, err
	}
	loan, err := s.refreshLoan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range loan.Charges {
		if loan.Charges[i].ID == chargeID {
			return &loan.Charges[i], nil
		}
	}
	return nil, fmt.Errorf("loan %d has no charge %d", loan.ID, chargeID)
}

func (s *Steps) lastChargeWaived(ctx context.Context) error {
	charge, err := s.lastCharge(ctx)
	if err != nil {
		return err
	}
	if !charge.Waived {
		return fmt.Errorf("charge %d is not waived (waived amount %s)", charge.ID, charge.AmountWaived)
	}
	return nil
}

func (s *Steps) lastChargeOutstanding(ctx context.Context, expected string) error {
	charge, err := s.lastCharge(ctx)
	if err != nil {
		return err
	}
	if !utils.SameAmount(expected, charge.AmountOutstanding.String()) {
		return fmt.Errorf("charge %d outstanding is %s, expected %s", charge.ID, charge.AmountOutstanding, expected)
	}
	return nil
}
