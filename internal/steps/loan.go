package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/scenario"
	"github.com/segyhp/loan-e2e/internal/table"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerLoanSteps(sc *godog.ScenarioContext) {
	sc.Step(`^Admin creates a new "([^"]*)" loan submitted on "([^"]*)" with ([\d.]+) principal and (\d+) (DAYS|WEEKS|MONTHS) installments$`, s.createLoan)
	sc.Step(`^Admin creates a new loan with product "([^"]*)" and the following data:$`, s.createLoanFromTable)

	sc.Step(`^Admin successfully approves the loan on "([^"]*)" with "([^"]*)" amount$`, s.approveLoan)
	sc.Step(`^Admin tries to approve the loan on "([^"]*)" with "([^"]*)" amount$`, s.tryApproveLoan)
	sc.Step(`^Admin successfully disburses the loan on "([^"]*)" with "([^"]*)" amount$`, s.disburseLoan)
	sc.Step(`^Admin tries to disburse the loan on "([^"]*)" with "([^"]*)" amount$`, s.tryDisburseLoan)
	sc.Step(`^Admin successfully undoes the loan approval$`, s.undoApproval)
	sc.Step(`^Admin successfully undoes the loan disbursal$`, s.undoDisbursal)

	sc.Step(`^Customer makes a repayment on "([^"]*)" with ([\d.]+) transaction amount$`, s.makeRepayment)
	sc.Step(`^Customer tries to make a repayment on "([^"]*)" with ([\d.]+) transaction amount$`, s.tryMakeRepayment)

	sc.Step(`^Loan status will be "([^"]*)"$`, s.loanStatusIs)
	sc.Step(`^Loan has ([\d.]+) outstanding amount$`, s.loanOutstandingIs)
	sc.Step(`^Loan Repayment schedule has (\d+) periods, with the following data for periods:$`, s.scheduleMatches)
	sc.Step(`^Loan Repayment schedule has the following data in Total row:$`, s.scheduleTotalsMatch)
	sc.Step(`^Loan Transactions tab has the following data:$`, s.transactionsMatch)

	sc.Step(`^The last request failed with status (\d+) and error code "([^"]*)"$`, s.lastRequestFailedWith)
	sc.Step(`^The last request failed with error message containing "([^"]*)"$`, s.lastRequestFailedWithMessage)
}

// Loan attributes accepted in creation tables
const (
	attrSubmittedOn        = "submitted on"
	attrExpectedDisbursal  = "expected disbursement"
	attrPrincipal          = "principal"
	attrInterestRate       = "interest rate"
	attrInstallments       = "installments"
	attrRepaymentEvery     = "repayment every"
	attrFrequency          = "frequency"
	attrProcessingStrategy = "processing strategy"
)

func (s *Steps) createLoan(ctx context.Context, product, submittedOn, principal string, installments int, frequency string) error {
	return s.submitLoan(ctx, product, map[string]string{
		attrSubmittedOn:  submittedOn,
		attrPrincipal:    principal,
		attrInstallments: strconv.Itoa(installments),
		attrFrequency:    frequency,
	})
}

func (s *Steps) createLoanFromTable(ctx context.Context, product string, dt *godog.Table) error {
	values, err := table.KeyValues(table.Cells(dt))
	if err != nil {
		return err
	}
	return s.submitLoan(ctx, product, values)
}

func (s *Steps) submitLoan(ctx context.Context, product string, values map[string]string) error {
	request, err := s.buildLoanRequest(ctx, product, values)
	if err != nil {
		return err
	}
	resp, err := s.API.CreateLoan(ctx, request)
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyLoanCreateResponse, resp)
	s.Logger.Debug("loan created", zap.Int64("loan_id", resp.LoanID), zap.String("product", product))
	return nil
}

func (s *Steps) buildLoanRequest(ctx context.Context, product string, values map[string]string) (*domain.PostLoansRequest, error) {
	for key := range values {
		switch key {
		case attrSubmittedOn, attrExpectedDisbursal, attrPrincipal, attrInterestRate,
			attrInstallments, attrRepaymentEvery, attrFrequency, attrProcessingStrategy:
		default:
			return nil, apperrors.WrapInvalidTable(fmt.Sprintf("unknown loan attribute %q", key))
		}
	}

	clientID, err := s.clientID()
	if err != nil {
		return nil, err
	}
	productID, err := s.Products.Resolve(ctx, product)
	if err != nil {
		return nil, err
	}

	submittedOn := values[attrSubmittedOn]
	if submittedOn == "" {
		if submittedOn, err = s.businessDate(ctx); err != nil {
			return nil, err
		}
	}
	expectedDisbursal := valueOr(values, attrExpectedDisbursal, submittedOn)

	principal, err := utils.DecimalFromString(values[attrPrincipal])
	if err != nil {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("principal %q is not an amount", values[attrPrincipal]))
	}
	interestRate, err := utils.DecimalFromString(values[attrInterestRate])
	if err != nil {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("interest rate %q is not a number", values[attrInterestRate]))
	}
	installments, err := strconv.Atoi(valueOr(values, attrInstallments, "1"))
	if err != nil {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("installments %q is not a number", values[attrInstallments]))
	}
	every, err := strconv.Atoi(valueOr(values, attrRepaymentEvery, "1"))
	if err != nil {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("repayment every %q is not a number", values[attrRepaymentEvery]))
	}
	frequencyName := strings.ToUpper(valueOr(values, attrFrequency, "MONTHS"))
	frequency, ok := domain.FrequencyTypes[frequencyName]
	if !ok {
		return nil, apperrors.WrapInvalidTable(fmt.Sprintf("unknown frequency %q", frequencyName))
	}

	return &domain.PostLoansRequest{
		ClientID:                          clientID,
		ProductID:                         productID,
		Principal:                         principal,
		LoanTermFrequency:                 installments * every,
		LoanTermFrequencyType:             frequency,
		NumberOfRepayments:                installments,
		RepaymentEvery:                    every,
		RepaymentFrequencyType:            frequency,
		InterestRatePerPeriod:             interestRate,
		AmortizationType:                  domain.AmortizationEqualInstallments,
		InterestType:                      domain.InterestTypeDecliningBalance,
		InterestCalculationPeriodType:     domain.InterestCalcSameAsRepayment,
		TransactionProcessingStrategyCode: valueOr(values, attrProcessingStrategy, domain.DefaultProcessingStrategy),
		ExpectedDisbursementDate:          expectedDisbursal,
		SubmittedOnDate:                   submittedOn,
		LoanType:                          "individual",
		DateFormat:                        utils.DateFormat,
		Locale:                            utils.Locale,
		ExternalID:                        utils.ExternalID(),
	}, nil
}

func valueOr(values map[string]string, key, fallback string) string {
	if v := values[key]; v != "" {
		return v
	}
	return fallback
}

func approvalRequest(date, amount string) (*domain.PostLoansLoanIDRequest, error) {
	approved, err := utils.DecimalFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("approved amount %q: %w", amount, err)
	}
	return &domain.PostLoansLoanIDRequest{
		ApprovedOnDate:           date,
		ApprovedLoanAmount:       &approved,
		ExpectedDisbursementDate: date,
		DateFormat:               utils.DateFormat,
		Locale:                   utils.Locale,
	}, nil
}

func disbursalRequest(date, amount string) (*domain.PostLoansLoanIDRequest, error) {
	disbursed, err := utils.DecimalFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("disbursed amount %q: %w", amount, err)
	}
	return &domain.PostLoansLoanIDRequest{
		ActualDisbursementDate: date,
		TransactionAmount:      &disbursed,
		DateFormat:             utils.DateFormat,
		Locale:                 utils.Locale,
	}, nil
}

func (s *Steps) approve(ctx context.Context, date, amount string) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	request, err := approvalRequest(date, amount)
	if err != nil {
		return err
	}
	resp, err := s.API.ApproveLoan(ctx, loanID, request)
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyLoanApproveResponse, resp)
	return nil
}

func (s *Steps) approveLoan(ctx context.Context, date, amount string) error {
	if err := s.approve(ctx, date, amount); err != nil {
		return err
	}
	return s.loanStatusIs(ctx, "APPROVED")
}

func (s *Steps) tryApproveLoan(ctx context.Context, date, amount string) error {
	return s.expectFailure("loan approval", s.approve(ctx, date, amount))
}

func (s *Steps) disburse(ctx context.Context, date, amount string) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	request, err := disbursalRequest(date, amount)
	if err != nil {
		return err
	}
	resp, err := s.API.DisburseLoan(ctx, loanID, request)
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyLoanDisburseResponse, resp)
	return nil
}

func (s *Steps) disburseLoan(ctx context.Context, date, amount string) error {
	if err := s.disburse(ctx, date, amount); err != nil {
		return err
	}
	return s.loanStatusIs(ctx, "ACTIVE")
}

func (s *Steps) tryDisburseLoan(ctx context.Context, date, amount string) error {
	return s.expectFailure("loan disbursal", s.disburse(ctx, date, amount))
}

func (s *Steps) undoApproval(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	if _, err := s.API.UndoApproval(ctx, loanID); err != nil {
		return err
	}
	s.ctx.Delete(scenario.KeyLoanApproveResponse)
	return s.loanStatusIs(ctx, "SUBMITTED_AND_PENDING_APPROVAL")
}

func (s *Steps) undoDisbursal(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	if _, err := s.API.UndoDisbursal(ctx, loanID); err != nil {
		return err
	}
	s.ctx.Delete(scenario.KeyLoanDisburseResponse)
	return s.loanStatusIs(ctx, "APPROVED")
}

func (s *Steps) repay(ctx context.Context, date, amount string) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	value, err := utils.DecimalFromString(amount)
	if err != nil {
		return fmt.Errorf("repayment amount %q: %w", amount, err)
	}
	resp, err := s.API.MakeRepayment(ctx, loanID, &domain.PostLoansLoanIDTransactionsRequest{
		TransactionDate:   date,
		TransactionAmount: value,
		ExternalID:        utils.ExternalID(),
		DateFormat:        utils.DateFormat,
		Locale:            utils.Locale,
	})
	if err != nil {
		return err
	}
	s.ctx.Put(scenario.KeyLoanRepaymentResponse, resp)
	return nil
}

func (s *Steps) makeRepayment(ctx context.Context, date, amount string) error {
	return s.repay(ctx, date, amount)
}

func (s *Steps) tryMakeRepayment(ctx context.Context, date, amount string) error {
	return s.expectFailure("repayment", s.repay(ctx, date, amount))
}

func (s *Steps) loanStatusIs(ctx context.Context, expected string) error {
	loan, err := s.refreshLoan(ctx)
	if err != nil {
		return err
	}
	if actual := loan.StatusName(); actual != expected {
		return fmt.Errorf("loan %d status is %s, expected %s", loan.ID, actual, expected)
	}
	return nil
}

func (s *Steps) loanOutstandingIs(ctx context.Context, expected string) error {
	want, err := decimal.NewFromString(expected)
	if err != nil {
		return err
	}
	loan, err := s.refreshLoan(ctx)
	if err != nil {
		return err
	}
	if actual := loan.TotalOutstanding(); !actual.Equal(want) {
		return fmt.Errorf("loan %d outstanding is %s, expected %s", loan.ID, actual, want)
	}
	return nil
}

func (s *Steps) schedule(ctx context.Context) (*domain.RepaymentSchedule, error) {
	loan, err := s.refreshLoan(ctx)
	if err != nil {
		return nil, err
	}
	if loan.RepaymentSchedule == nil {
		return nil, fmt.Errorf("loan %d has no repayment schedule", loan.ID)
	}
	return loan.RepaymentSchedule, nil
}

func (s *Steps) scheduleMatches(ctx context.Context, periods int, dt *godog.Table) error {
	expected, err := table.FromGodog(dt)
	if err != nil {
		return err
	}
	sched, err := s.schedule(ctx)
	if err != nil {
		return err
	}

	installments := 0
	for _, p := range sched.Periods {
		if !p.IsDisbursement() {
			installments++
		}
	}
	if installments != periods {
		return apperrors.WrapTableMismatch("repayment schedule", []string{
			fmt.Sprintf("expected %d periods, got %d", periods, installments),
		})
	}
	return table.ReconcileSchedule(expected, sched.Periods)
}

func (s *Steps) scheduleTotalsMatch(ctx context.Context, dt *godog.Table) error {
	expected, err := table.FromGodog(dt)
	if err != nil {
		return err
	}
	sched, err := s.schedule(ctx)
	if err != nil {
		return err
	}
	return table.ReconcileTotals(expected, *sched)
}

func (s *Steps) transactionsMatch(ctx context.Context, dt *godog.Table) error {
	expected, err := table.FromGodog(dt)
	if err != nil {
		return err
	}
	loan, err := s.refreshLoan(ctx)
	if err != nil {
		return err
	}
	return table.ReconcileTransactions(expected, loan.Transactions)
}

func (s *Steps) lastError() (*apperrors.APIError, error) {
	return scenario.Must[*apperrors.APIError](s.ctx, scenario.KeyLastError)
}

func (s *Steps) lastRequestFailedWith(status int, code string) error {
	apiErr, err := s.lastError()
	if err != nil {
		return err
	}
	if apiErr.StatusCode != status {
		return fmt.Errorf("last request failed with status %d, expected %d: %w", apiErr.StatusCode, status, apiErr)
	}
	if !apiErr.HasCode(code) {
		return fmt.Errorf("last request error codes %v do not include %q", apiErr.Codes(), code)
	}
	return nil
}

func (s *Steps) lastRequestFailedWithMessage(fragment string) error {
	apiErr, err := s.lastError()
	if err != nil {
		return err
	}
	if strings.Contains(apiErr.DeveloperMessage, fragment) {
		return nil
	}
	for _, arg := range apiErr.Errors {
		if strings.Contains(arg.DeveloperMessage, fragment) || strings.Contains(arg.DefaultUserMessage, fragment) {
			return nil
		}
	}
	return fmt.Errorf("last request error %q does not mention %q", apiErr.Error(), fragment)
}
