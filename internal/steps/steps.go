package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/client"
	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/event"
	"github.com/segyhp/loan-e2e/internal/repository"
	"github.com/segyhp/loan-e2e/internal/scenario"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

// ProductLookup resolves a product name from a feature file to its id
type ProductLookup interface {
	Resolve(ctx context.Context, name string) (int64, error)
}

// Deps are the collaborators shared by every scenario of a run. Locks and
// StoredEvents are nil when no database is configured.
type Deps struct {
	API          client.API
	Products     ProductLookup
	Store        *event.Store
	Events       *event.Assertion
	Locks        repository.LoanLockRepository
	StoredEvents repository.EventRepository
	Recorder     *Recorder
	Logger       *zap.Logger
}

// Steps holds one scenario's state and implements its step definitions
type Steps struct {
	Deps
	ctx *scenario.Context
}

// New creates the steps for one scenario with a fresh context
func New(deps Deps) *Steps {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Recorder == nil {
		deps.Recorder = &Recorder{}
	}
	return &Steps{Deps: deps, ctx: scenario.New()}
}

// Context exposes the scenario context, mainly to tests
func (s *Steps) Context() *scenario.Context {
	return s.ctx
}

// Register wires hooks and every step group onto sc
func Register(sc *godog.ScenarioContext, deps Deps) *Steps {
	s := New(deps)
	s.registerHooks(sc)
	s.registerBusinessDateSteps(sc)
	s.registerClientSteps(sc)
	s.registerLoanSteps(sc)
	s.registerChargeSteps(sc)
	s.registerReAgingSteps(sc)
	s.registerInterestPauseSteps(sc)
	s.registerCOBSteps(sc)
	s.registerEventSteps(sc)
	return s
}

// Recorder collects failed scenarios across a run
type Recorder struct {
	mu     sync.Mutex
	failed []string
	total  int
}

func (r *Recorder) record(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	if err != nil {
		r.failed = append(r.failed, fmt.Sprintf("%s: %v", name, err))
	}
}

// Failed returns the failures recorded so far
func (r *Recorder) Failed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failed...)
}

// Total is the number of finished scenarios
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

func (s *Steps) clientID() (int64, error) {
	resp, err := scenario.Must[*domain.CommandResponse](s.ctx, scenario.KeyClientCreateResponse)
	if err != nil {
		return 0, err
	}
	if resp.ClientID != 0 {
		return resp.ClientID, nil
	}
	return resp.ResourceID, nil
}

func (s *Steps) loanID() (int64, error) {
	resp, err := scenario.Must[*domain.CommandResponse](s.ctx, scenario.KeyLoanCreateResponse)
	if err != nil {
		return 0, err
	}
	if resp.LoanID != 0 {
		return resp.LoanID, nil
	}
	return resp.ResourceID, nil
}

// refreshLoan re-reads the current loan and stores it under KeyLoanDetails
func (s *Steps) refreshLoan(ctx context.Context) (*domain.LoanDetails, error) {
	loanID, err := s.loanID()
	if err != nil {
		return nil, err
	}
	loan, err := s.API.RetrieveLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	s.ctx.Put(scenario.KeyLoanDetails, loan)
	return loan, nil
}

// expectFailure turns an expected platform rejection into the scenario's
// last error. Success or a non-platform error fails the step.
func (s *Steps) expectFailure(action string, err error) error {
	if err == nil {
		return fmt.Errorf("%s was expected to fail but succeeded", action)
	}
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		return fmt.Errorf("%s: %w", action, err)
	}
	s.ctx.Put(scenario.KeyLastError, apiErr)
	s.Logger.Debug("expected platform rejection",
		zap.String("action", action),
		zap.Int("status", apiErr.StatusCode),
		zap.Strings("codes", apiErr.Codes()),
	)
	return nil
}
