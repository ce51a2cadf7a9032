package suite

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/config"
	"github.com/segyhp/loan-e2e/internal/domain"
	"github.com/segyhp/loan-e2e/internal/event"
	"github.com/segyhp/loan-e2e/internal/mocks"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Platform: config.PlatformConfig{ReadyTimeout: "3s"},
		Events: config.EventsConfig{
			Source:         config.EventSourceNone,
			WaitTimeout:    "500ms",
			PollInterval:   "5ms",
			NegativeWindow: "50ms",
		},
		Suite: config.SuiteConfig{Format: "progress"},
	}
}

// chanSource feeds whatever the test pushes on ch
type chanSource struct {
	ch       chan event.Event
	startErr error
	started  bool
}

func (c *chanSource) Name() string { return "chan" }

func (c *chanSource) Start(context.Context) error {
	c.started = c.startErr == nil
	return c.startErr
}

func (c *chanSource) Run(ctx context.Context, sink event.Sink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-c.ch:
			sink(e)
		}
	}
}

const approveFeature = `Feature: Approval

  Scenario: Approve a submitted loan
    Given Admin sets the business date to "01 January 2024"
    And Admin creates a client with random data
    And Admin creates a new "LP1" loan submitted on "01 January 2024" with 1000 principal and 4 MONTHS installments
    When Admin successfully approves the loan on "01 January 2024" with "1000" amount
    Then "LoanApprovedBusinessEvent" event is raised for the loan
`

func platformMock(status string, src *chanSource) *mocks.MockPlatformAPI {
	api := new(mocks.MockPlatformAPI)
	api.On("Ping", mock.Anything).Return(nil)
	api.On("SetBusinessDate", mock.Anything, mock.Anything).Return(nil)
	api.On("CreateClient", mock.Anything, mock.Anything).Return(&domain.CommandResponse{ClientID: 3}, nil)
	api.On("ListLoanProducts", mock.Anything).Return([]domain.LoanProduct{{ID: 1, Name: "LP1", ShortName: "LP1"}}, nil)
	api.On("CreateLoan", mock.Anything, mock.Anything).Return(&domain.CommandResponse{LoanID: 17}, nil)
	api.On("ApproveLoan", mock.Anything, int64(17), mock.Anything).Return(&domain.CommandResponse{LoanID: 17}, nil).Run(func(mock.Arguments) {
		src.ch <- event.Event{ID: 1, Type: domain.EventLoanApproved, AggregateRootID: 17}
	})
	api.On("RetrieveLoan", mock.Anything, int64(17)).Return(&domain.LoanDetails{ID: 17, Status: domain.LoanStatus{Code: status}}, nil)
	return api
}

func featureOptions(s *Suite) *godog.Options {
	opts := s.Options(io.Discard)
	opts.FeatureContents = []godog.Feature{{Name: "approve.feature", Contents: []byte(approveFeature)}}
	return opts
}

func TestSuite_Run(t *testing.T) {
	src := &chanSource{ch: make(chan event.Event, 1)}
	api := platformMock(domain.LoanStatusApproved, src)
	s := NewWithDeps(testConfig(), zap.NewNop(), api, src, nil, nil)

	result, err := s.Run(context.Background(), featureOptions(s))

	require.NoError(t, err)
	assert.True(t, src.started)
	assert.True(t, result.Passed(), "failed: %v", result.Failed)
	assert.Equal(t, 1, result.Scenarios)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
	assert.Equal(t, "status=0 scenarios=1 failed=0", result.String())
}

func TestSuite_RunReportsFailures(t *testing.T) {
	src := &chanSource{ch: make(chan event.Event, 1)}
	api := platformMock(domain.LoanStatusSubmitted, src)
	s := NewWithDeps(testConfig(), zap.NewNop(), api, src, nil, nil)

	result, err := s.Run(context.Background(), featureOptions(s))

	require.NoError(t, err)
	assert.False(t, result.Passed())
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0], "expected APPROVED")
}

func TestSuite_RunSourceStartFails(t *testing.T) {
	src := &chanSource{ch: make(chan event.Event, 1), startErr: errors.New("NOAUTH Authentication required")}
	api := platformMock(domain.LoanStatusApproved, src)
	s := NewWithDeps(testConfig(), zap.NewNop(), api, src, nil, nil)

	result, err := s.Run(context.Background(), featureOptions(s))

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start chan")
	api.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
}

func TestSuite_WaitReady(t *testing.T) {
	api := new(mocks.MockPlatformAPI)
	api.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	api.On("Ping", mock.Anything).Return(nil)
	s := NewWithDeps(testConfig(), zap.NewNop(), api, nil, nil, nil)

	assert.NoError(t, s.WaitReady(context.Background()))
	api.AssertNumberOfCalls(t, "Ping", 2)
}

func TestSuite_WaitReady_Unauthorized(t *testing.T) {
	api := new(mocks.MockPlatformAPI)
	api.On("Ping", mock.Anything).Return(&apperrors.APIError{StatusCode: http.StatusUnauthorized})
	s := NewWithDeps(testConfig(), zap.NewNop(), api, nil, nil, nil)

	start := time.Now()
	err := s.WaitReady(context.Background())

	assert.True(t, errors.Is(err, apperrors.ErrPlatformNotReady))
	assert.Less(t, time.Since(start), time.Second)
	api.AssertNumberOfCalls(t, "Ping", 1)
}

func TestSuite_RunNotReady(t *testing.T) {
	api := new(mocks.MockPlatformAPI)
	api.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	s := NewWithDeps(testConfig(), zap.NewNop(), api, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	result, err := s.Run(ctx, featureOptions(s))

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperrors.ErrPlatformNotReady))
	api.AssertNotCalled(t, "SetBusinessDate", mock.Anything, mock.Anything)
}

func TestSuite_Options(t *testing.T) {
	cfg := testConfig()
	cfg.Suite.Paths = "features/loan, features/events"
	cfg.Suite.Tags = "~@wip"
	s := NewWithDeps(cfg, zap.NewNop(), new(mocks.MockPlatformAPI), nil, nil, nil)

	opts := s.Options(nil)

	assert.Equal(t, []string{"features/loan", "features/events"}, opts.Paths)
	assert.Equal(t, "~@wip", opts.Tags)
	assert.Equal(t, 1, opts.Concurrency)
	assert.True(t, opts.Strict)
	assert.NotNil(t, opts.Output)

	checks := s.Checks()
	assert.Len(t, checks, 1)
	assert.Contains(t, checks, "platform")
	assert.NoError(t, s.Close())
}
