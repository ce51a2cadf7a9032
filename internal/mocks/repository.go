package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-e2e/internal/event"
	"github.com/segyhp/loan-e2e/internal/repository"
)

type MockLoanLockRepository struct {
	mock.Mock
}

func (m *MockLoanLockRepository) GetLock(ctx context.Context, loanID int64) (*repository.LoanLock, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.LoanLock), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) MaxID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]event.Event, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *MockEventRepository) CountFor(ctx context.Context, eventType string, aggregateRootID int64) (int, error) {
	args := m.Called(ctx, eventType, aggregateRootID)
	return args.Int(0), args.Error(1)
}
