package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-e2e/internal/domain"
)

type MockPlatformAPI struct {
	mock.Mock
}

func commandResponse(args mock.Arguments) (*domain.CommandResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommandResponse), args.Error(1)
}

func (m *MockPlatformAPI) CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, request))
}

func (m *MockPlatformAPI) CreateLoan(ctx context.Context, request *domain.PostLoansRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, request))
}

func (m *MockPlatformAPI) ApproveLoan(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, request))
}

func (m *MockPlatformAPI) DisburseLoan(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, request))
}

func (m *MockPlatformAPI) UndoApproval(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID))
}

func (m *MockPlatformAPI) UndoDisbursal(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID))
}

func (m *MockPlatformAPI) RetrieveLoan(ctx context.Context, loanID int64) (*domain.LoanDetails, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanDetails), args.Error(1)
}

func (m *MockPlatformAPI) MakeRepayment(ctx context.Context, loanID int64, request *domain.PostLoansLoanIDTransactionsRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, request))
}

func (m *MockPlatformAPI) ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanProduct), args.Error(1)
}

func (m *MockPlatformAPI) AddLoanCharge(ctx context.Context, loanID int64, request *domain.AddLoanChargeRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, request))
}

func (m *MockPlatformAPI) WaiveLoanCharge(ctx context.Context, loanID, loanChargeID int64) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, loanChargeID))
}

func (m *MockPlatformAPI) ReAge(ctx context.Context, loanID int64, request *domain.ReAgeRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, request))
}

func (m *MockPlatformAPI) UndoReAge(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID))
}

func (m *MockPlatformAPI) ReAmortize(ctx context.Context, loanID int64, request *domain.ReAmortizeRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, request))
}

func (m *MockPlatformAPI) UndoReAmortize(ctx context.Context, loanID int64) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID))
}

func (m *MockPlatformAPI) CreateInterestPause(ctx context.Context, loanID int64, request *domain.InterestPauseRequest) (*domain.CommandResponse, error) {
	return commandResponse(m.Called(ctx, loanID, request))
}

func (m *MockPlatformAPI) ListInterestPauses(ctx context.Context, loanID int64) ([]domain.InterestPause, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InterestPause), args.Error(1)
}

func (m *MockPlatformAPI) DeleteInterestPause(ctx context.Context, loanID, pauseID int64) error {
	args := m.Called(ctx, loanID, pauseID)
	return args.Error(0)
}

func (m *MockPlatformAPI) SetBusinessDate(ctx context.Context, request *domain.BusinessDateRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPlatformAPI) GetBusinessDate(ctx context.Context, dateType string) (*domain.BusinessDate, error) {
	args := m.Called(ctx, dateType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessDate), args.Error(1)
}

func (m *MockPlatformAPI) RunInlineCOB(ctx context.Context, loanIDs ...int64) error {
	args := m.Called(ctx, loanIDs)
	return args.Error(0)
}

func (m *MockPlatformAPI) ConfigureExternalEvents(ctx context.Context, request *domain.ExternalEventConfigurationRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPlatformAPI) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
