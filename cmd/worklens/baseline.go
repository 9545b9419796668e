package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/soleview/worklens/internal/mobility"
)

func baselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage team mobility baselines",
	}
	cmd.AddCommand(baselineRefreshCmd())
	cmd.AddCommand(baselineAuditCmd())
	return cmd
}

func baselineRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Recompute team mobility profiles from stored aggregates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			baselines := mobility.NewStore(store, slog.Default())
			if err := baselines.Refresh(ctx); err != nil {
				return err
			}

			for _, p := range baselines.Profiles() {
				slog.Info("team profile",
					"team", p.TeamName,
					"schedule", p.WorkScheduleType,
					"type", p.TeamType,
					"level", p.MobilityLevel,
					"ratio", fmt.Sprintf("%.2f", p.T1ToORatio),
					"baseline", fmt.Sprintf("%.2f", p.BaselineConfidence),
				)
			}
			return nil
		},
	}
}

func baselineAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Flag teams whose measured mobility contradicts their name",
		Long: `Compares each team's data-derived mobility level against the category
its name implies and reports mismatches. A mismatch usually means events
are landing under the wrong team name upstream and the thresholds need a
manual review.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			baselines := mobility.NewStore(store, slog.Default())
			if err := baselines.Refresh(ctx); err != nil {
				return err
			}

			mismatches := baselines.Audit()
			if len(mismatches) == 0 {
				slog.Info("All team profiles match their name-derived expectations")
				return nil
			}
			for _, m := range mismatches {
				slog.Warn("baseline mismatch",
					"team", m.TeamName,
					"schedule", m.WorkScheduleType,
					"type", m.TeamType,
					"level", m.Level,
					"reason", m.Reason,
				)
			}
			return fmt.Errorf("%d team profile(s) need review", len(mismatches))
		},
	}
}
