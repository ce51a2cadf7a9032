package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/internal/config"
	"github.com/segyhp/loan-e2e/internal/logger"
	"github.com/segyhp/loan-e2e/internal/suite"
)

var (
	tags   string
	format string
	paths  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "loan-e2e",
	Short:         "End-to-end acceptance suite for the loan platform API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// runCmd executes the feature files once
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the feature suite against the configured platform",
	Long: `Run the Gherkin feature suite once against BASE_URL.

Flags override GODOG_TAGS, GODOG_FORMAT and FEATURE_PATHS.
The exit code is non-zero when any scenario fails.`,
	RunE: runSuite,
}

// readyCmd waits for the platform to answer
var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Wait until the platform answers authenticated requests",
	RunE:  runReady,
}

func init() {
	runCmd.Flags().StringVar(&tags, "tags", "", "Tag expression, e.g. \"@reage && ~@wip\"")
	runCmd.Flags().StringVar(&format, "format", "", "godog formatter (pretty, progress, cucumber, junit)")
	runCmd.Flags().StringVar(&paths, "paths", "", "Comma separated feature paths")

	rootCmd.AddCommand(runCmd, readyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, *suite.Suite, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.Flags().Changed("tags") {
		cfg.Suite.Tags = tags
	}
	if cmd.Flags().Changed("format") {
		cfg.Suite.Format = format
	}
	if cmd.Flags().Changed("paths") {
		cfg.Suite.Paths = paths
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}

	s, err := suite.New(cmd.Context(), cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, s, nil
}

func runSuite(cmd *cobra.Command, _ []string) error {
	_, log, s, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer s.Close()

	result, err := s.Run(cmd.Context(), nil)
	if err != nil {
		return err
	}
	if !result.Passed() {
		for _, failure := range result.Failed {
			fmt.Fprintln(os.Stderr, "FAILED", failure)
		}
		return fmt.Errorf("suite failed: %s", result)
	}
	return nil
}

func runReady(cmd *cobra.Command, _ []string) error {
	cfg, log, s, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer s.Close()

	if err := s.WaitReady(cmd.Context()); err != nil {
		return err
	}
	log.Info("platform ready", zap.String("base_url", cfg.Platform.BaseURL))
	return nil
}
