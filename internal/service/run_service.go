package service

import (
	"context"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/suite"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

// maxHistory is how many finished runs are kept in memory
const maxHistory = 20

// Runner executes the feature suite once
type Runner interface {
	Run(ctx context.Context, opts *godog.Options) (*suite.Result, error)
}

// RunService serializes suite runs and remembers recent results
type RunService struct {
	runner Runner
	logger *zap.Logger

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	history   []*suite.Result
	lastErr   error
}

func NewRunService(runner Runner, logger *zap.Logger) *RunService {
	return &RunService{
		runner: runner,
		logger: logger,
	}
}

// Trigger runs the suite and blocks until it finishes. A second trigger
// while a run is going fails with ErrRunInProgress.
func (s *RunService) Trigger(ctx context.Context) (*suite.Result, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	return s.execute(ctx)
}

// TriggerAsync starts a run in the background
func (s *RunService) TriggerAsync(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	go func() {
		_, _ = s.execute(ctx)
	}()
	return nil
}

func (s *RunService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return apperrors.WrapRunInProgress(s.startedAt)
	}
	s.running = true
	s.startedAt = time.Now()
	return nil
}

func (s *RunService) execute(ctx context.Context) (*suite.Result, error) {
	s.logger.Info("suite run started")
	result, err := s.runner.Run(ctx, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastErr = err
	if err != nil {
		s.logger.Error("suite run aborted", zap.Error(err))
		return nil, err
	}

	s.history = append(s.history, result)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	if !result.Passed() {
		s.logger.Warn("suite run failed", zap.Strings("failed", result.Failed))
	}
	return result, nil
}

// Running reports whether a run is in progress
func (s *RunService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Last returns the most recent finished run
func (s *RunService) Last() (*suite.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil, false
	}
	return s.history[len(s.history)-1], true
}

// History returns finished runs, oldest first
func (s *RunService) History() []*suite.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*suite.Result(nil), s.history...)
}

// LastError is the error that aborted the latest run, if any
func (s *RunService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
