package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/soleview/worklens/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored analysis results to an Excel workbook",
		RunE:  runExport,
	}

	cmd.Flags().String("run", "", "run id to export (default: all stored results)")
	cmd.Flags().String("out", "worklens-results.xlsx", "output workbook path")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	runID, _ := cmd.Flags().GetString("run")
	out, _ := cmd.Flags().GetString("out")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	results, err := store.ListResults(ctx, runID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no stored results to export")
	}

	if err := export.WriteWorkbook(results, out); err != nil {
		return err
	}
	slog.Info("Export complete", "path", out, "rows", len(results))
	return nil
}
