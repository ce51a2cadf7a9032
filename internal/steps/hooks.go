package steps

import (
	"context"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

func (s *Steps) registerHooks(sc *godog.ScenarioContext) {
	sc.Before(s.beforeScenario)
	sc.After(s.afterScenario)
}

func (s *Steps) beforeScenario(ctx context.Context, scn *godog.Scenario) (context.Context, error) {
	s.ctx.Reset()
	if s.Store != nil {
		s.Store.Reset()
	}
	s.Logger.Info("scenario started",
		zap.String("scenario", scn.Name),
		zap.String("uri", scn.Uri),
	)
	return ctx, nil
}

func (s *Steps) afterScenario(ctx context.Context, scn *godog.Scenario, err error) (context.Context, error) {
	s.Recorder.record(scn.Name, err)

	if err != nil {
		fields := []zap.Field{
			zap.String("scenario", scn.Name),
			zap.String("uri", scn.Uri),
			zap.Strings("context_keys", s.ctx.Keys()),
			zap.Error(err),
		}
		if loanID, idErr := s.loanID(); idErr == nil && s.Store != nil {
			fields = append(fields, zap.Strings("loan_events", s.Store.TypesFor(loanID)))
		}
		s.Logger.Error("scenario failed", fields...)
		return ctx, nil
	}

	s.Logger.Info("scenario passed", zap.String("scenario", scn.Name))
	return ctx, nil
}
