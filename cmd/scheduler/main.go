package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/config"
	"github.com/segyhp/loan-e2e/internal/handler"
	"github.com/segyhp/loan-e2e/internal/logger"
	"github.com/segyhp/loan-e2e/internal/service"
	"github.com/segyhp/loan-e2e/internal/suite"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := suite.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize suite", zap.Error(err))
	}
	defer s.Close()

	runs := service.NewRunService(s, log.Named("runs"))

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if err := setupCronJobs(ctx, c, cfg, runs, log); err != nil {
		log.Fatal("Failed to schedule suite runs", zap.Error(err))
	}
	c.Start()
	log.Info("Scheduler started", zap.String("cron", cfg.Scheduler.Cron))

	router := handler.NewRouter(
		handler.NewRunHandler(ctx, runs),
		handler.NewHealthHandler(s.Checks()),
		log.Named("http"),
	)
	server := &http.Server{
		Addr:         cfg.Scheduler.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Status server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Status server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	cancel()
	<-c.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Status server forced to shutdown", zap.Error(err))
	}
	log.Info("Scheduler stopped")
}

func setupCronJobs(ctx context.Context, c *cron.Cron, cfg *config.Config, runs *service.RunService, log *zap.Logger) error {
	_, err := c.AddFunc(cfg.Scheduler.Cron, func() {
		result, err := runs.Trigger(ctx)
		switch {
		case errors.Is(err, apperrors.ErrRunInProgress):
			log.Info("Scheduled run skipped, previous run still going")
		case err != nil:
			log.Error("Scheduled run aborted", zap.Error(err))
		default:
			log.Info("Scheduled run finished", zap.Bool("passed", result.Passed()), zap.Int("scenarios", result.Scenarios))
		}
	})
	return err
}
