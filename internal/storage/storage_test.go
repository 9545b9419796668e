package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
	"github.com/soleview/worklens/internal/storage"
	"github.com/soleview/worklens/internal/testutil"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestNewSQLiteStorageCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "worklens.db")

	store, err := storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := storage.NewSQLiteStorage("")
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// SetupTestDB already migrated once; a second run must be a no-op.
	require.NoError(t, db.Storage.Migrate(context.Background()))
}

func TestEmployeeRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedEmployees(model.EmployeeProfile{
		EmployeeID:       "E100",
		Name:             "Kim",
		TeamName:         "Plant 1",
		CenterName:       "Ulsan",
		Department:       "Production",
		Position:         "Senior Technician",
		WorkScheduleType: "day",
	})

	got, err := db.Storage.GetEmployee(context.Background(), "E100")
	require.NoError(t, err)
	assert.Equal(t, "Kim", got.Name)
	assert.Equal(t, "Plant 1", got.TeamName)
	assert.Equal(t, "Ulsan", got.CenterName)
	assert.Equal(t, "day", got.WorkScheduleType)
}

func TestGetEmployeeNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := db.Storage.GetEmployee(context.Background(), "GHOST")
	assert.ErrorIs(t, err, common.ErrProfileNotFound)
}

func TestSaveEmployeesUpserts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedEmployees(model.EmployeeProfile{EmployeeID: "E100", Name: "Kim", TeamName: "Plant 1"})
	db.SeedEmployees(model.EmployeeProfile{EmployeeID: "E100", Name: "Kim", TeamName: "Plant 2"})

	got, err := db.Storage.GetEmployee(context.Background(), "E100")
	require.NoError(t, err)
	assert.Equal(t, "Plant 2", got.TeamName)

	ids, err := db.Storage.ListEmployeeIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"E100"}, ids)
}

func TestClaimRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedClaims(model.ClaimRecord{
		EmployeeID:      "E100",
		Date:            day,
		StartTime:       day.Add(9 * time.Hour),
		EndTime:         day.Add(18 * time.Hour),
		ClaimedHours:    8,
		ExcludedMinutes: 60,
		LeaveType:       "",
	})

	got, err := db.Storage.GetClaim(context.Background(), "E100", day)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, got.ClaimedHours, 1e-9)
	assert.Equal(t, 60, got.ExcludedMinutes)
	assert.True(t, got.Date.Equal(day))
	assert.True(t, got.StartTime.Equal(day.Add(9*time.Hour)))
}

func TestClaimWithoutTimes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedClaims(model.ClaimRecord{EmployeeID: "E100", Date: day, ClaimedHours: 4})

	got, err := db.Storage.GetClaim(context.Background(), "E100", day)
	require.NoError(t, err)
	assert.True(t, got.StartTime.IsZero())
	assert.True(t, got.EndTime.IsZero())
}

func TestGetClaimNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedClaims(model.ClaimRecord{EmployeeID: "E100", Date: day, ClaimedHours: 8})

	_, err := db.Storage.GetClaim(context.Background(), "E100", day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, common.ErrClaimNotFound)
}

func TestBadgeRowsDayWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedBadgeRows("E100",
		testutil.Badge(day.AddDate(0, 0, -1), 23, 50, "gate out"),
		testutil.Badge(day, 8, 55, "gate in"),
		testutil.Badge(day, 18, 0, "gate out"),
		testutil.Badge(day.AddDate(0, 0, 1), 0, 5, "gate in"),
	)

	rows, err := db.Storage.BadgeRows(context.Background(), "E100", day)
	require.NoError(t, err)
	require.Len(t, rows, 2, "only rows inside the calendar day")
	assert.Equal(t, "gate in", rows[0].Location)
	assert.Equal(t, "gate out", rows[1].Location)
	assert.True(t, rows[0].Timestamp.Before(rows[1].Timestamp))
}

func TestEventQueriesReturnEmptyNotNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	badges, err := db.Storage.BadgeRows(ctx, "E100", day)
	require.NoError(t, err)
	assert.NotNil(t, badges)
	assert.Empty(t, badges)

	meals, err := db.Storage.MealRows(ctx, "E100", day)
	require.NoError(t, err)
	assert.NotNil(t, meals)

	mail, err := db.Storage.MailRows(ctx, "E100", day)
	require.NoError(t, err)
	assert.NotNil(t, mail)
}

func TestEventQueryValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := db.Storage.BadgeRows(context.Background(), "", day)
	assert.Error(t, err)

	_, err = db.Storage.BadgeRows(context.Background(), "E100", time.Time{})
	assert.Error(t, err)
}

func TestTeamStatsRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedTeamStats(
		model.TeamTagStats{TeamName: "Plant 1", WorkScheduleType: "day", TotalEvents: 9000, T1Events: 700, OEvents: 90, TeamSize: 20},
		model.TeamTagStats{TeamName: "HR", WorkScheduleType: "day", TotalEvents: 4000, T1Events: 50, OEvents: 900, TeamSize: 8},
	)
	// Upsert replaces the aggregate, not duplicates it.
	db.SeedTeamStats(
		model.TeamTagStats{TeamName: "Plant 1", WorkScheduleType: "day", TotalEvents: 9500, T1Events: 750, OEvents: 95, TeamSize: 21},
	)

	stats, err := db.Storage.TeamStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byTeam := make(map[string]model.TeamTagStats)
	for _, st := range stats {
		byTeam[st.TeamName] = st
	}
	assert.Equal(t, 9500, byTeam["Plant 1"].TotalEvents)
	assert.Equal(t, 21, byTeam["Plant 1"].TeamSize)
	assert.Equal(t, 900, byTeam["HR"].OEvents)
}

func TestResultsRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	claimed := 8.5
	full := service.DayResult{
		Date:         day,
		RunID:        "run-1",
		EmployeeID:   "E100",
		EmployeeName: "Kim",
		TeamName:     "Plant 1",
		CenterName:   "Ulsan",
		Shift:        model.ShiftDay,
		Metrics: model.WorkMetrics{
			EmployeeID:       "E100",
			Date:             day,
			TotalTime:        545,
			WorkTime:         480,
			FocusTime:        120,
			MealTime:         30,
			TransitTime:      30,
			WorkRatio:        88.07,
			ReliabilityScore: 92,
			GroundRules: &model.GroundRulesMetrics{
				GroundRulesWorkTime:   505,
				GroundRulesConfidence: 84,
				T1WorkMovement:        25,
				T1NonWorkMovement:     5,
				TeamBaselineUsedPct:   50,
				AnomalyScore:          12,
				AppliedRulesCount:     3,
			},
		},
		ClaimedHours: &claimed,
		Comparison:   &model.ComparisonResult{ClaimedHours: claimed, ImprovementPct: 41.5},
		Anomalies:    &model.AnomalyReport{HasAnomalies: true, Level: model.AnomalyLow},
	}
	bare := service.DayResult{
		Date:       day.AddDate(0, 0, 1),
		RunID:      "run-1",
		EmployeeID: "E100",
		Shift:      model.ShiftNight,
		Metrics:    model.WorkMetrics{TotalTime: 300, WorkTime: 240},
	}
	require.NoError(t, db.Storage.SaveResults(ctx, []service.DayResult{full, bare}))

	got, err := db.Storage.ListResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "E100", first.EmployeeID)
	assert.Equal(t, model.ShiftDay, first.Shift)
	assert.Equal(t, 480, first.Metrics.WorkTime)
	require.NotNil(t, first.Metrics.GroundRules)
	assert.InDelta(t, 505, first.Metrics.GroundRules.GroundRulesWorkTime, 1e-9)
	assert.Equal(t, 3, first.Metrics.GroundRules.AppliedRulesCount)
	require.NotNil(t, first.ClaimedHours)
	assert.InDelta(t, 8.5, *first.ClaimedHours, 1e-9)
	require.NotNil(t, first.Comparison)
	assert.InDelta(t, 41.5, first.Comparison.ImprovementPct, 1e-9)
	require.NotNil(t, first.Anomalies)
	assert.Equal(t, model.AnomalyLow, first.Anomalies.Level)
	assert.True(t, first.Anomalies.HasAnomalies)

	second := got[1]
	assert.Equal(t, model.ShiftNight, second.Shift)
	assert.Nil(t, second.Metrics.GroundRules)
	assert.Nil(t, second.ClaimedHours)
	assert.Nil(t, second.Comparison)
	assert.Nil(t, second.Anomalies)
}

func TestSaveResultsUpsertsSameRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	r := service.DayResult{
		Date:       day,
		RunID:      "run-1",
		EmployeeID: "E100",
		Shift:      model.ShiftDay,
		Metrics:    model.WorkMetrics{WorkTime: 400},
	}
	require.NoError(t, db.Storage.SaveResults(ctx, []service.DayResult{r}))

	r.Metrics.WorkTime = 450
	require.NoError(t, db.Storage.SaveResults(ctx, []service.DayResult{r}))

	got, err := db.Storage.ListResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 450, got[0].Metrics.WorkTime)
}

func TestListResultsFiltersByRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Storage.SaveResults(ctx, []service.DayResult{
		{Date: day, RunID: "run-1", EmployeeID: "E100", Shift: model.ShiftDay},
		{Date: day, RunID: "run-2", EmployeeID: "E200", Shift: model.ShiftDay},
	}))

	got, err := db.Storage.ListResults(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "E200", got[0].EmployeeID)

	all, err := db.Storage.ListResults(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
