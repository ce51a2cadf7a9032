package steps

import (
	"context"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/domain"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/utils"
)

func (s *Steps) registerCOBSteps(sc *godog.ScenarioContext) {
	sc.Step(`^Admin runs inline COB job for the loan$`, s.runInlineCOB)
	sc.Step(`^The loan is not locked$`, s.loanNotLocked)
	sc.Step(`^Loan COB event is raised with business date "([^"]*)"$`, s.cobEventRaised)
	sc.Step(`^Loan accounts stayed locked event is not raised$`, s.stayedLockedNotRaised)
}

func (s *Steps) runInlineCOB(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	return s.API.RunInlineCOB(ctx, loanID)
}

// loanNotLocked reads the lock table directly; skipped without a database
func (s *Steps) loanNotLocked(ctx context.Context) error {
	if s.Locks == nil {
		s.Logger.Warn("loan lock check skipped, no database configured")
		return godog.ErrSkip
	}
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	lock, err := s.Locks.GetLock(ctx, loanID)
	if err != nil {
		return apperrors.WrapDatabaseError(err)
	}
	if lock != nil {
		s.Logger.Debug("loan lock found",
			zap.Int64("loan_id", loanID),
			zap.String("owner", lock.LockOwner),
			zap.String("error", lock.Error.String),
		)
		return apperrors.WrapLoanLocked(loanID, lock.LockOwner)
	}
	return nil
}

func (s *Steps) cobEventRaised(ctx context.Context, date string) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	businessDate, err := utils.ParseDate(date)
	if err != nil {
		return err
	}
	match, err := s.Events.AssertEventRaised(ctx, domain.EventLoanCOBFinished, loanID)
	if err != nil {
		return err
	}
	return match.ExtractingBusinessDate().IsEqualTo(businessDate.Format(utils.ISODateOnly))
}

func (s *Steps) stayedLockedNotRaised(ctx context.Context) error {
	loanID, err := s.loanID()
	if err != nil {
		return err
	}
	return s.Events.AssertEventNotRaised(ctx, domain.EventLoanAccountsStayedLocked, loanID)
}
