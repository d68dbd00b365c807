// File: cmd/assess.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/compliance"
	"github.com/vexred/aegis-cli/internal/config"
	"github.com/vexred/aegis-cli/internal/monitor"
	"github.com/vexred/aegis-cli/internal/observability"
	"github.com/vexred/aegis-cli/internal/reporting"
	"github.com/vexred/aegis-cli/internal/results"
	"github.com/vexred/aegis-cli/internal/sandbox"
	"github.com/vexred/aegis-cli/internal/scanners"
	"github.com/vexred/aegis-cli/internal/scheduler"
	"github.com/vexred/aegis-cli/internal/store"
)

// newAssessCmd creates and configures the `assess` command.
func newAssessCmd() *cobra.Command {
	assessCmd := &cobra.Command{
		Use:   "assess [target]",
		Short: "Runs the enabled scanners against a target directory and maps findings onto compliance frameworks",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so command-line values override the config file and
			// environment with the right precedence.
			if err := viper.BindPFlag("scheduler.parallel_execution", cmd.Flags().Lookup("parallel")); err != nil {
				return err
			}
			if err := viper.BindPFlag("scheduler.max_concurrent_scanners", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			if err := viper.BindPFlag("scanners.enabled", cmd.Flags().Lookup("scanners")); err != nil {
				return err
			}
			if err := viper.BindPFlag("output", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			return viper.BindPFlag("format", cmd.Flags().Lookup("format"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			cfg.Report.Output = viper.GetString("output")
			cfg.Report.Format = viper.GetString("format")
			if len(args) > 0 {
				cfg.Project.TargetPath = args[0]
			}

			// Tune concurrency and memory ceilings to the host before the
			// plan is frozen.
			cfg.Optimize()

			target, err := config.ResolvePath(cfg.Project.TargetPath)
			if err != nil {
				return fmt.Errorf("failed to resolve target path: %w", err)
			}

			assessmentID := uuid.New().String()
			logger.Info("Starting assessment",
				zap.String("assessment_id", assessmentID),
				zap.String("project", cfg.Project.Name),
				zap.String("target", target),
				zap.Strings("scanners", cfg.Scanners.Enabled),
			)

			return runAssessment(ctx, cfg, assessmentID, target, logger)
		},
	}

	assessCmd.Flags().StringP("output", "o", "", "report output path (default stdout)")
	assessCmd.Flags().StringP("format", "f", "json", "report format")
	assessCmd.Flags().Bool("parallel", true, "run scanners concurrently")
	assessCmd.Flags().Int("concurrency", 0, "maximum concurrent scanners (0 = from config)")
	assessCmd.Flags().StringSlice("scanners", nil, "scanners to enable (default from config)")
	return assessCmd
}

func runAssessment(ctx context.Context, cfg *config.Config, assessmentID, target string, logger *zap.Logger) error {
	// Resource monitoring runs on its own timer for the whole assessment.
	mon := monitor.New(cfg.Monitor, logger)
	if cfg.Monitor.Enabled {
		mon.Start()
	}

	gateway, err := sandbox.New(target, cfg.Sandbox.Allow, cfg.Sandbox.Deny, logger,
		sandbox.WithReadObserver(func() { mon.AddProcessed(1) }))
	if err != nil {
		mon.Stop()
		return fmt.Errorf("failed to build file sandbox: %w", err)
	}

	// A configuration error aborts before scheduling: no report, one
	// explanatory message.
	plugins, err := scanners.Default().Create(cfg.Scanners.Enabled, logger)
	if err != nil {
		mon.Stop()
		return fmt.Errorf("scanner configuration error: %w", err)
	}

	sched, err := scheduler.New(cfg.Scheduler, logger,
		scheduler.WithProgressFunc(func(ev schemas.ProgressEvent) {
			logger.Info("Progress",
				zap.String("phase", string(ev.Phase)),
				zap.Float64("percent", ev.OverallPercent),
				zap.String("activity", ev.CurrentActivity),
			)
		}),
		scheduler.WithErrorFunc(func(ev schemas.ErrorEvent) {
			logger.Warn("Scanner error",
				zap.String("scanner", ev.Scanner),
				zap.String("kind", string(ev.Kind)),
				zap.String("message", ev.Message),
			)
		}),
	)
	if err != nil {
		mon.Stop()
		return fmt.Errorf("failed to build scheduler: %w", err)
	}
	for _, p := range plugins {
		if err := sched.Register(p); err != nil {
			mon.Stop()
			return fmt.Errorf("failed to register scanner: %w", err)
		}
	}

	result, err := sched.Run(ctx, assessmentID, target, gateway)
	if err != nil {
		mon.Stop()
		return fmt.Errorf("assessment run failed: %w", err)
	}
	result.Counters.FilesProcessed = int(gateway.ReadCount())

	// Classification and reporting happen after scanning, even when some
	// scanners failed: partial results still make a usable report.
	pipeline := results.NewPipeline(logger)
	summary := pipeline.Process(result.Findings)

	aggregator, err := compliance.NewDefaultAggregator(logger)
	if err != nil {
		mon.Stop()
		return fmt.Errorf("failed to build compliance aggregator: %w", err)
	}
	complianceView := aggregator.Aggregate(result.Findings)

	var resourceReport *monitor.Report
	if cfg.Monitor.Enabled {
		r := mon.Stop()
		resourceReport = &r
	}

	report := &reporting.AssessmentReport{
		AssessmentID: assessmentID,
		Project:      cfg.Project.Name,
		Target:       target,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		ToolVersion:  Version,
		Summary:      summary,
		Findings:     result.Findings,
		Compliance:   complianceView,
		Counters:     result.Counters,
		Errors:       result.Errors,
		Resources:    resourceReport,
	}
	report.AddErrorNotice()

	reporter, err := reporting.New(cfg.Report.Format, cfg.Report.Output)
	if err != nil {
		return fmt.Errorf("failed to build reporter: %w", err)
	}
	if err := reporter.Write(report); err != nil {
		reporter.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := reporter.Close(); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	if cfg.Database.URL != "" {
		if err := persistAssessment(ctx, cfg.Database.URL, result, complianceView, logger); err != nil {
			// Persistence failure does not invalidate the report the user
			// already has.
			logger.Error("Failed to persist assessment", zap.Error(err))
		}
	}

	logger.Info("Assessment complete",
		zap.String("assessment_id", assessmentID),
		zap.Int("findings", summary.Total),
		zap.Int("scanner_errors", len(result.Errors)),
	)
	if errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	return nil
}

func persistAssessment(ctx context.Context, url string, result *schemas.AssessmentResult, complianceView map[schemas.Framework][]schemas.ComplianceMapping, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	defer pool.Close()

	st, err := store.New(ctx, pool, logger)
	if err != nil {
		return err
	}
	return st.PersistAssessment(ctx, result, complianceView)
}
