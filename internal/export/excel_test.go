package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
)

func sampleResults() []service.DayResult {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	claimed := 8.5
	return []service.DayResult{
		{
			Date:         day,
			RunID:        "run-1",
			EmployeeID:   "E100",
			EmployeeName: "Kim",
			TeamName:     "Plant 1",
			CenterName:   "Ulsan",
			Shift:        model.ShiftDay,
			Metrics: model.WorkMetrics{
				TotalTime:        545,
				WorkTime:         480,
				MealTime:         30,
				TransitTime:      30,
				WorkRatio:        88.07,
				ReliabilityScore: 92.4,
				GroundRules: &model.GroundRulesMetrics{
					GroundRulesWorkTime:   505.5,
					GroundRulesConfidence: 84,
					T1WorkMovement:        25.5,
					T1NonWorkMovement:     4.5,
					AnomalyScore:          12,
				},
			},
			ClaimedHours: &claimed,
			Comparison:   &model.ComparisonResult{ClaimedHours: claimed, ImprovementPct: 41.52},
			Anomalies:    &model.AnomalyReport{HasAnomalies: true, Level: model.AnomalyLow},
		},
		{
			Date:       day.AddDate(0, 0, 1),
			RunID:      "run-1",
			EmployeeID: "E100",
			Shift:      model.ShiftNight,
			Metrics:    model.WorkMetrics{TotalTime: 300, WorkTime: 240},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteWorkbook(sampleResults(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Contains(t, f.GetSheetList(), metricsSheet)
	assert.Contains(t, f.GetSheetList(), summarySheet)
	assert.NotContains(t, f.GetSheetList(), "Sheet1")

	rows, err := f.GetRows(metricsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per result")
	assert.Equal(t, metricsHeader, rows[0][:len(metricsHeader)])

	first := rows[1]
	assert.Equal(t, "2026-03-02", first[0])
	assert.Equal(t, "E100", first[1])
	assert.Equal(t, "Kim", first[2])
	assert.Equal(t, "day", first[5])
	assert.Equal(t, "480", first[7])
	assert.Equal(t, "505.5", first[15])
	assert.Equal(t, "low", first[20])
	assert.Equal(t, "8.5", first[21])
	assert.Equal(t, "41.5", first[22])
}

func TestWriteWorkbookNightRowHasBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteWorkbook(sampleResults(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	shift, err := f.GetCellValue(metricsSheet, "F3")
	require.NoError(t, err)
	assert.Equal(t, "night", shift)

	grWork, err := f.GetCellValue(metricsSheet, "P3")
	require.NoError(t, err)
	assert.Empty(t, grWork, "no ground-rules columns without a baseline")

	claimed, err := f.GetCellValue(metricsSheet, "V3")
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestWriteWorkbookSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteWorkbook(sampleResults(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 6)

	labels := make(map[string]string)
	for _, row := range rows {
		if len(row) >= 2 {
			labels[row[0]] = row[1]
		}
	}
	assert.Equal(t, "2", labels["Employee-days"])
	assert.Equal(t, "1", labels["Night shifts"])
	assert.Equal(t, "0", labels["Anomalous days"])
	assert.Equal(t, "41.5", labels["Avg improvement (%)"])
}

func TestWriteWorkbookEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(metricsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
