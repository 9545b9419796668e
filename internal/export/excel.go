// Package export writes analysis results to Excel workbooks for the
// reporting teams that consume them outside this system.
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
)

const (
	metricsSheet = "Daily Metrics"
	summarySheet = "Summary"
)

// metricsHeader is the column layout of the per-day sheet.
var metricsHeader = []string{
	"Date",
	"Employee ID",
	"Name",
	"Team",
	"Center",
	"Shift",
	"Total (min)",
	"Work (min)",
	"Focus (min)",
	"Meeting (min)",
	"Meal (min)",
	"Transit (min)",
	"Rest (min)",
	"Work Ratio (%)",
	"Reliability",
	"GR Work (min)",
	"GR Confidence",
	"T1 Work (min)",
	"T1 Non-Work (min)",
	"Anomaly Score",
	"Anomaly Level",
	"Claimed (h)",
	"Improvement (%)",
}

// WriteWorkbook writes one row per analyzed employee-day plus a summary
// sheet, and saves the workbook at path.
func WriteWorkbook(results []service.DayResult, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(metricsSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range metricsHeader {
		cell, cellErr := excelize.CoordinatesToCellName(col+1, 1)
		if cellErr != nil {
			return fmt.Errorf("failed to resolve header cell: %w", cellErr)
		}
		if err := f.SetCellValue(metricsSheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(metricsHeader), 1)
	if err := f.SetCellStyle(metricsSheet, "A1", endHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range results {
		if err := writeResultRow(f, i+2, r); err != nil {
			return err
		}
	}

	if err := writeSummary(f, results); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeResultRow(f *excelize.File, row int, r service.DayResult) error {
	m := r.Metrics
	values := []any{
		r.Date.Format("2006-01-02"),
		r.EmployeeID,
		r.EmployeeName,
		r.TeamName,
		r.CenterName,
		string(r.Shift),
		m.TotalTime,
		m.WorkTime,
		m.FocusTime,
		m.MeetingTime,
		m.MealTime,
		m.TransitTime,
		m.RestTime,
		round1(m.WorkRatio),
		round1(m.ReliabilityScore),
	}

	if gr := m.GroundRules; gr != nil {
		values = append(values,
			round1(gr.GroundRulesWorkTime),
			round1(gr.GroundRulesConfidence),
			round1(gr.T1WorkMovement),
			round1(gr.T1NonWorkMovement),
			round1(gr.AnomalyScore),
		)
	} else {
		values = append(values, nil, nil, nil, nil, nil)
	}

	if r.Anomalies != nil {
		values = append(values, string(r.Anomalies.Level))
	} else {
		values = append(values, nil)
	}
	if r.ClaimedHours != nil {
		values = append(values, *r.ClaimedHours)
	} else {
		values = append(values, nil)
	}
	if r.Comparison != nil {
		values = append(values, round1(r.Comparison.ImprovementPct))
	} else {
		values = append(values, nil)
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve row cell: %w", err)
	}
	if err := f.SetSheetRow(metricsSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write result row: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, results []service.DayResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	var totalWork, totalGRWork float64
	nights, anomalous, compared := 0, 0, 0
	var improvementSum float64
	for _, r := range results {
		totalWork += float64(r.Metrics.WorkTime)
		if gr := r.Metrics.GroundRules; gr != nil {
			totalGRWork += gr.GroundRulesWorkTime
			if gr.AnomalyScore > 20 {
				anomalous++
			}
		} else {
			totalGRWork += float64(r.Metrics.WorkTime)
		}
		if r.Shift == model.ShiftNight {
			nights++
		}
		if r.Comparison != nil {
			improvementSum += r.Comparison.ImprovementPct
			compared++
		}
	}

	rows := [][]any{
		{"Generated", time.Now().Format(time.RFC3339)},
		{"Employee-days", len(results)},
		{"Night shifts", nights},
		{"Anomalous days", anomalous},
		{"Total work (h)", round1(totalWork / 60)},
		{"Total ground-rules work (h)", round1(totalGRWork / 60)},
	}
	if compared > 0 {
		rows = append(rows, []any{"Avg improvement (%)", round1(improvementSum / float64(compared))})
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to resolve summary cell: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
