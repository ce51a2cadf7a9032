package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/suite"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, opts *godog.Options) (*suite.Result, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*suite.Result), args.Error(1)
}

func TestRunService_Trigger(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(&suite.Result{Status: 1, Scenarios: 2, Failed: []string{"approve: boom"}}, nil)
	svc := NewRunService(runner, zap.NewNop())

	_, ok := svc.Last()
	assert.False(t, ok)

	result, err := svc.Trigger(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Passed())

	last, ok := svc.Last()
	require.True(t, ok)
	assert.Same(t, result, last)
	assert.False(t, svc.Running())
}

func TestRunService_Aborted(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(nil, apperrors.WrapPlatformNotReady(errors.New("refused")))
	svc := NewRunService(runner, zap.NewNop())

	_, err := svc.Trigger(context.Background())

	assert.True(t, errors.Is(err, apperrors.ErrPlatformNotReady))
	assert.True(t, errors.Is(svc.LastError(), apperrors.ErrPlatformNotReady))
	assert.Empty(t, svc.History())
}

func TestRunService_RejectsOverlappingRuns(t *testing.T) {
	release := make(chan time.Time)
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(&suite.Result{}, nil).WaitUntil(release).Once()
	svc := NewRunService(runner, zap.NewNop())

	require.NoError(t, svc.TriggerAsync(context.Background()))
	assert.True(t, svc.Running())

	_, err := svc.Trigger(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrRunInProgress))
	assert.True(t, errors.Is(svc.TriggerAsync(context.Background()), apperrors.ErrRunInProgress))

	close(release)
	require.Eventually(t, func() bool { return !svc.Running() }, time.Second, 5*time.Millisecond)
	assert.Len(t, svc.History(), 1)
}

func TestRunService_HistoryIsBounded(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(&suite.Result{}, nil)
	svc := NewRunService(runner, zap.NewNop())

	for i := 0; i < maxHistory+5; i++ {
		_, err := svc.Trigger(context.Background())
		require.NoError(t, err)
	}

	assert.Len(t, svc.History(), maxHistory)
}
