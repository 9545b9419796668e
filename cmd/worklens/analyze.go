package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soleview/worklens/internal/engine"
	"github.com/soleview/worklens/internal/mobility"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze employee work days",
		Long: `Run the full analysis pipeline for a set of employees over a date
range: enrich raw events into canonical tags, classify the activity
timeline, and compute work-hour metrics with the team mobility
baseline applied.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringSlice("employees", nil, "employee ids to analyze (default: all known employees)")
	cmd.Flags().String("from", "", "start date, YYYY-MM-DD (required)")
	cmd.Flags().String("to", "", "end date, YYYY-MM-DD (default: same as --from)")
	cmd.Flags().Int("workers", 4, "concurrent employee workers")
	cmd.Flags().Bool("ground-rules", true, "apply the team mobility baseline")
	cmd.Flags().Bool("save", true, "persist results to the database")
	_ = cmd.MarkFlagRequired("from")

	_ = viper.BindPFlag("analyze.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	employees, _ := cmd.Flags().GetStringSlice("employees")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	workers := viper.GetInt("analyze.workers")
	groundRules, _ := cmd.Flags().GetBool("ground-rules")
	save, _ := cmd.Flags().GetBool("save")

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return fmt.Errorf("invalid --from date %q: %w", fromStr, err)
	}
	to := from
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			return fmt.Errorf("invalid --to date %q: %w", toStr, err)
		}
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", toStr, fromStr)
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if len(employees) == 0 {
		if employees, err = store.ListEmployeeIDs(ctx); err != nil {
			return err
		}
		if len(employees) == 0 {
			return fmt.Errorf("no employees in database; load master data first")
		}
	}

	baselines := mobility.NewStore(store, slog.Default())
	if groundRules {
		if err := baselines.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to load mobility baselines: %w", err)
		}
	}

	cfg := engine.DefaultConfig()
	cfg.Workers = workers
	cfg.UseGroundRules = groundRules
	cfg.SaveResults = save
	eng := engine.NewWithConfig(engine.Deps{
		Directory: store,
		Claims:    store,
		Events:    store,
		Baselines: baselines,
		Sink:      store,
		Logger:    slog.Default(),
	}, cfg)

	days := int(to.Sub(from).Hours()/24) + 1
	total := len(employees) * days
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Analyzing work days..."),
	)

	progress := make(chan engine.Progress, 64)
	barDone := make(chan struct{})
	go func() {
		defer close(barDone)
		for p := range progress {
			_ = bar.Set(p.Completed)
		}
	}()

	result, err := eng.Batch(ctx, engine.Request{
		EmployeeIDs: employees,
		From:        from,
		To:          to,
		Progress:    progress,
	})
	close(progress)
	<-barDone
	_ = bar.Finish()

	if result != nil {
		printBatchSummary(result)
	}
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	return nil
}

func printBatchSummary(result *engine.BatchResult) {
	s := result.Summary
	slog.Info("Batch complete",
		"run_id", result.RunID,
		"total", s.TotalUnits,
		"processed", s.Processed,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"night_shifts", s.NightShifts,
		"anomalous_days", s.AnomalousDays,
		"duration", s.Duration.Round(time.Millisecond),
	)

	if len(result.Errors) == 0 {
		return
	}
	var sb strings.Builder
	for i, ue := range result.Errors {
		if i >= 10 {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(result.Errors)-10)
			break
		}
		fmt.Fprintf(&sb, "  %s %s: %v\n", ue.EmployeeID, ue.Date.Format("2006-01-02"), ue.Err)
	}
	slog.Warn("Some units failed:\n" + sb.String())
}
