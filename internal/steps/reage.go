package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/scenario"
	"github.com/segyhp/loan-e2e/internal/table"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerReAgingSteps(sc *godog.ScenarioContext) {
	sc.Step(`^Admin creates a Loan re-aging transaction with the following data:$`, s.reAge)
	sc.Step(`^Admin tries to create a Loan re-aging transaction with the following data:$`, s.tryReAge)
	sc.Step(`^Admin successfully undoes the Loan re-aging transaction$`, s.undoReAge)
	sc.Step(`^Admin tries to undo the Loan re-aging transaction$`, s.tryUndoReAge)

	sc.Step(`^Admin creates a Loan re-amortization transaction$`, s.reAmortize)
	sc.Step(`^Admin tries to create a Loan re-amortization transaction$`, s.tryReAmortize)
	sc.Step(`^Admin successfully undoes the Loan re-amortization transaction$`, s.undoReAmortize)
	sc.Step(`^Admin tries to undo the Loan re-amortization transaction$`, s.tryUndoReAmortize)

	sc.Step(`^Loan re-aging event is raised$`, s.eventRaisedFor(domain.EventLoanReAge))
	sc.Step(`^Loan re-aging undo event is raised$`, s.eventRaisedFor(domain.EventLoanUndoReAge))
	sc.Step(`^Loan re-amortization event is raised$`, s.eventRaisedFor(domain.EventLoanReAmortize))
	sc.Step(`^Loan re-amortization undo event is raised$`, s.eventRaisedFor(domain.EventLoanUndoReAmortize))
}

// reAgeRequest reads a one-row table:
// | frequencyNumber | frequencyType | startDate | numberOfInstallments |
func reAgeRequest(dt *godog.Table) (*domain.ReAgeRequest, error) {
	t, err := table.FromGodog(dt)
	if err != nil {
		return nil, err
	}
	if len(t.Rows) != 1 {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("re-aging table needs exactly one row, has %d", len(t.Rows)))
	}
	row := t.Maps()[0]

	frequencyNumber, err := strconv.Atoi(row["frequencyNumber"])
	if err != nil {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("frequencyNumber %q is not a number", row["frequencyNumber"]))
	}
	installments, err := strconv.Atoi(row["numberOfInstallments"])
	if err != nil {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("numberOfInstallments %q is not a number", row["numberOfInstallments"]))
	}

	return &domain.ReAgeRequest{
		FrequencyNumber:      frequencyNumber,
		FrequencyType:        strings.ToUpper(row["frequencyType"]),
		StartDate:            row["startDate"],
		NumberOfInstallments: installments,
		ExternalID:           utils.ExternalID(),
		DateFormat:           utils.DateFormat,
		Locale:               utils.Locale,
	}, nil
}

func (s *Steps) submitReAge(ctx context.Context, dt *godog.Table) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	request, err := reAgeRequest(dt)
	if err != nil {
		return err
	}
	resp, err := s.API.ReAge(ctx, loanID, request)
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyLoanReAgeResponse, resp)
	return nil
}

func (s *Steps) reAge(ctx context.Context, dt *godog.Table) error {
	return s.submitReAge(ctx, dt)
}

func (s *Steps) tryReAge(ctx context.Context, dt *godog.Table) error {
	return s.expectFailure("re-aging", s.submitReAge(ctx, dt))
}

func (s *Steps) submitUndoReAge(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	if _, err := s.API.UndoReAge(ctx, loanID); err != nil {
		return err
	}
	s.ctx.Delete(scenario.KeyLoanReAgeResponse)
	return nil
}

func (s *Steps) undoReAge(ctx context.Context) error {
	return s.submitUndoReAge(ctx)
}

func (s *Steps) tryUndoReAge(ctx context.Context) error {
	return s.expectFailure("re-aging undo", s.submitUndoReAge(ctx))
}

func (s *Steps) submitReAmortize(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	resp, err := s.API.ReAmortize(ctx, loanID, &domain.ReAmortizeRequest{ExternalID: utils.ExternalID()})
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyLoanReAmortizeResponse, resp)
	return nil
}

func (s *Steps) reAmortize(ctx context.Context) error {
	return s.submitReAmortize(ctx)
}

func (s *Steps) tryReAmortize(ctx context.Context) error {
	return s.expectFailure("re-amortization", s.submitReAmortize(ctx))
}

func (s *Steps) submitUndoReAmortize(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	if _, err := s.API.UndoReAmortize(ctx, loanID); err != nil {
		return err
	}
	s.ctx.Delete(scenario.KeyLoanReAmortizeResponse)
	return nil
}

func (s *Steps) undoReAmortize(ctx context.Context) error {
	return s.submitUndoReAmortize(ctx)
}

func (s *Steps) tryUndoReAmortize(ctx context.Context) error {
	return s.expectFailure("re-amortization undo", s.submitUndoReAmortize(ctx))
}
