package suite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/client"
	"github.com/segyhp/loan-e2e/internal/config"
	"github.com/segyhp/loan-e2e/internal/event"
	"github.com/segyhp/loan-e2e/internal/repository"
	"github.com/segyhp/loan-e2e/internal/steps"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

// Suite owns everything a godog run needs and is reusable across runs
type Suite struct {
	cfg    *config.Config
	logger *zap.Logger

	api          client.API
	products     *client.ProductResolver
	store        *event.Store
	events       *event.Assertion
	source       event.Source
	locks        repository.LoanLockRepository
	storedEvents repository.EventRepository

	db    *sqlx.DB
	redis *redis.Client
}

// Result summarizes one run
type Result struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Status     int       `json:"status"`
	Scenarios  int       `json:"scenarios"`
	Failed     []string  `json:"failed,omitempty"`
}

// Passed reports a zero godog exit status
func (r *Result) Passed() bool {
	return r.Status == 0
}

// New connects the platform client, the optional database and the event
// source selected by EVENT_SOURCE
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Suite, error) {
	s := &Suite{
		cfg:    cfg,
		logger: logger,
		api:    client.New(cfg.Platform, cfg.HTTPTimeout(), logger.Named("client")),
	}

	if cfg.HasDatabase() {
		db, err := repository.Connect(ctx, cfg.Database.URL)
		switch {
		case err != nil && cfg.Events.Source == config.EventSourceOutbox:
			return nil, apperrors.WrapDatabaseError(err)
		case err != nil:
			logger.Warn("database unavailable, lock and outbox checks will be skipped", zap.Error(err))
		default:
			s.db = db
			s.locks = repository.NewLoanLockRepository(db)
			s.storedEvents = repository.NewEventRepository(db)
		}
	}

	switch cfg.Events.Source {
	case config.EventSourceRedis:
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.source = event.NewRedisSource(s.redis, cfg.Redis.Stream, logger.Named("events"))
	case config.EventSourceOutbox:
		s.source = event.NewOutboxSource(s.storedEvents, cfg.EventPollInterval(), logger.Named("events"))
	}

	s.init()
	return s, nil
}

// NewWithDeps assembles a suite from ready-made collaborators. Any of source,
// locks and storedEvents may be nil.
func NewWithDeps(cfg *config.Config, logger *zap.Logger, api client.API, source event.Source, locks repository.LoanLockRepository, storedEvents repository.EventRepository) *Suite {
	s := &Suite{
		cfg:          cfg,
		logger:       logger,
		api:          api,
		source:       source,
		locks:        locks,
		storedEvents: storedEvents,
	}
	s.init()
	return s
}

func (s *Suite) init() {
	s.products = client.NewProductResolver(s.api)
	s.store = event.NewStore()
	s.events = event.NewAssertion(s.store, s.cfg.EventWaitTimeout(), s.cfg.EventPollInterval(), s.cfg.EventNegativeWindow())
}

// Checks returns readiness probes for the platform and any connected store
func (s *Suite) Checks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"platform": s.api.Ping,
	}
	if s.db != nil {
		checks["database"] = s.db.PingContext
	}
	if s.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close releases the database and Redis connections
func (s *Suite) Close() error {
	var firstErr error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WaitReady pings the platform until it answers or READY_TIMEOUT elapses.
// Authentication failures stop the wait immediately.
func (s *Suite) WaitReady(ctx context.Context) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.api.Ping(ctx)
		if apiErr, ok := apperrors.AsAPIError(err); ok && apiErr.StatusCode == http.StatusUnauthorized {
			return struct{}{}, backoff.Permanent(err)
		}
		if err != nil {
			s.logger.Debug("platform not ready yet", zap.Error(err))
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.cfg.ReadyTimeout()),
	)
	if err != nil {
		return apperrors.WrapPlatformNotReady(err)
	}
	return nil
}

// Options builds godog options from config. Output defaults to stdout.
func (s *Suite) Options(output io.Writer) *godog.Options {
	if output == nil {
		output = colors.Colored(os.Stdout)
	}
	return &godog.Options{
		Format:      s.cfg.Suite.Format,
		Paths:       s.cfg.FeaturePaths(),
		Tags:        s.cfg.Suite.Tags,
		Output:      output,
		Concurrency: 1,
		Randomize:   0,
		Strict:      true,
	}
}

// Run waits for the platform, fixes the event source's start position, then
// executes the features with the source collecting in the background
func (s *Suite) Run(ctx context.Context, opts *godog.Options) (*Result, error) {
	if opts == nil {
		opts = s.Options(nil)
	}
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}

	s.store.Reset()
	if s.source == nil {
		s.logger.Warn("no event source configured, event assertions will time out")
	} else {
		stop, err := event.Collect(ctx, s.source, s.store, s.logger)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	recorder := &steps.Recorder{}
	result := &Result{StartedAt: time.Now()}

	result.Status = godog.TestSuite{
		Name:                 "loan-e2e",
		TestSuiteInitializer: s.initializeSuite(),
		ScenarioInitializer:  s.initializeScenario(recorder),
		Options:              opts,
	}.Run()

	result.FinishedAt = time.Now()
	result.Scenarios = recorder.Total()
	result.Failed = recorder.Failed()

	s.logger.Info("suite finished",
		zap.Int("status", result.Status),
		zap.Int("scenarios", result.Scenarios),
		zap.Int("failed", len(result.Failed)),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

func (s *Suite) initializeSuite() func(*godog.TestSuiteContext) {
	return func(tsc *godog.TestSuiteContext) {
		tsc.BeforeSuite(func() {
			s.logger.Info("suite started")
		})
		tsc.AfterSuite(func() {
			s.logger.Info("suite stopped", zap.Int("events_received", s.store.Len()))
		})
	}
}

func (s *Suite) initializeScenario(recorder *steps.Recorder) func(*godog.ScenarioContext) {
	deps := steps.Deps{
		API:          s.api,
		Products:     s.products,
		Store:        s.store,
		Events:       s.events,
		Locks:        s.locks,
		StoredEvents: s.storedEvents,
		Recorder:     recorder,
		Logger:       s.logger.Named("steps"),
	}

	return func(sc *godog.ScenarioContext) {
		steps.Register(sc, deps)
	}
}

func (r *Result) String() string {
	return fmt.Sprintf("status=%d scenarios=%d failed=%d", r.Status, r.Scenarios, len(r.Failed))
}
