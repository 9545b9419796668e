package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/mobility"
	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
)

type fakeDirectory struct {
	profiles map[string]*model.EmployeeProfile
	err      error
}

func (f *fakeDirectory) GetEmployee(_ context.Context, id string) (*model.EmployeeProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrProfileNotFound, id)
	}
	return p, nil
}

type fakeClaims struct {
	// keyed by "id|2006-01-02"
	claims map[string]float64
}

func claimKey(id string, date time.Time) string {
	return id + "|" + date.Format("2006-01-02")
}

func (f *fakeClaims) GetClaim(_ context.Context, id string, date time.Time) (*model.ClaimRecord, error) {
	hours, ok := f.claims[claimKey(id, date)]
	if !ok {
		return nil, common.ErrClaimNotFound
	}
	return &model.ClaimRecord{EmployeeID: id, Date: date, ClaimedHours: hours}, nil
}

type fakeEvents struct {
	// badge rows keyed by "id|2006-01-02"
	badges map[string][]service.BadgeRow
	err    error
}

func (f *fakeEvents) BadgeRows(_ context.Context, id string, day time.Time) ([]service.BadgeRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.badges[claimKey(id, day)], nil
}

func (f *fakeEvents) MealRows(_ context.Context, _ string, _ time.Time) ([]service.MealRow, error) {
	return nil, nil
}

func (f *fakeEvents) MeetingRows(_ context.Context, _ string, _ time.Time) ([]service.MeetingRow, error) {
	return nil, nil
}

func (f *fakeEvents) MailRows(_ context.Context, _ string, _ time.Time) ([]service.ActionRow, error) {
	return nil, nil
}

func (f *fakeEvents) ApprovalRows(_ context.Context, _ string, _ time.Time) ([]service.ActionRow, error) {
	return nil, nil
}

func (f *fakeEvents) EquipmentRows(_ context.Context, _ string, _ time.Time) ([]service.ActionRow, error) {
	return nil, nil
}

type fakeSink struct {
	mu    sync.Mutex
	saved []service.DayResult
	err   error
}

func (f *fakeSink) SaveResults(_ context.Context, results []service.DayResult) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, results...)
	return nil
}

type fakeStats struct {
	stats []model.TeamTagStats
}

func (f *fakeStats) TeamStats(_ context.Context) ([]model.TeamTagStats, error) {
	return f.stats, nil
}

func badge(day time.Time, hour, minute int, location string) service.BadgeRow {
	return service.BadgeRow{
		Timestamp: time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC),
		Location:  location,
	}
}

func workDayRows(day time.Time) []service.BadgeRow {
	return []service.BadgeRow{
		badge(day, 8, 55, "gate in"),
		badge(day, 9, 0, "assembly line"),
		badge(day, 12, 0, "corridor b1"),
		badge(day, 12, 10, "assembly line"),
		badge(day, 18, 0, "gate out"),
	}
}

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testProfile(id string) *model.EmployeeProfile {
	return &model.EmployeeProfile{
		EmployeeID:       id,
		Name:             "Employee " + id,
		TeamName:         "Plant 1",
		Department:       "Production",
		WorkScheduleType: "day",
	}
}

func loadedBaselines(t *testing.T) *mobility.Store {
	t.Helper()
	store := mobility.NewStore(&fakeStats{stats: []model.TeamTagStats{
		{TeamName: "Plant 1", WorkScheduleType: "day", TotalEvents: 10000, T1Events: 800, OEvents: 100, TeamSize: 20},
	}}, slog.Default())
	require.NoError(t, store.Refresh(context.Background()))
	return store
}

func newTestEngine(t *testing.T, dir *fakeDirectory, claims *fakeClaims, events service.EventStore, sink *fakeSink) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.Retry = common.RetryOptions{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	return NewWithConfig(Deps{
		Directory: dir,
		Claims:    claims,
		Events:    events,
		Baselines: loadedBaselines(t),
		Sink:      sink,
		Logger:    slog.Default(),
	}, cfg)
}

func TestBatchHappyPath(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*model.EmployeeProfile{"E1": testProfile("E1")}}
	claims := &fakeClaims{claims: map[string]float64{claimKey("E1", testDay): 8.0}}
	events := &fakeEvents{badges: map[string][]service.BadgeRow{
		claimKey("E1", testDay): workDayRows(testDay),
	}}
	sink := &fakeSink{}

	result, err := newTestEngine(t, dir, claims, events, sink).Batch(context.Background(), Request{
		EmployeeIDs: []string{"E1"},
		From:        testDay,
		To:          testDay,
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Empty(t, result.Errors)

	r := result.Results[0]
	assert.Equal(t, "E1", r.EmployeeID)
	assert.Equal(t, model.ShiftDay, r.Shift)
	assert.NotNil(t, r.Metrics.GroundRules)
	assert.NotNil(t, r.Anomalies)
	require.NotNil(t, r.ClaimedHours)
	assert.InDelta(t, 8.0, *r.ClaimedHours, 1e-9)
	assert.NotNil(t, r.Comparison)

	assert.Equal(t, 1, result.Summary.Processed)
	assert.Equal(t, 1, result.Summary.TotalUnits)
	assert.Len(t, sink.saved, 1)
	assert.Equal(t, result.RunID, sink.saved[0].RunID)
}

func TestBatchSkipsEmptyDays(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*model.EmployeeProfile{"E1": testProfile("E1")}}
	events := &fakeEvents{badges: map[string][]service.BadgeRow{
		claimKey("E1", testDay): workDayRows(testDay),
		// next day has no rows at all
	}}

	result, err := newTestEngine(t, dir, &fakeClaims{}, events, &fakeSink{}).Batch(context.Background(), Request{
		EmployeeIDs: []string{"E1"},
		From:        testDay,
		To:          testDay.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	assert.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Summary.Processed)
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.Equal(t, 0, result.Summary.Failed)
}

func TestBatchUnknownEmployeeSkips(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*model.EmployeeProfile{}}

	result, err := newTestEngine(t, dir, &fakeClaims{}, &fakeEvents{}, &fakeSink{}).Batch(context.Background(), Request{
		EmployeeIDs: []string{"GHOST"},
		From:        testDay,
		To:          testDay,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Summary.Skipped)
}

func TestBatchUnitErrorDoesNotAbortSiblings(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*model.EmployeeProfile{
		"E1": testProfile("E1"),
		"E2": testProfile("E2"),
	}}
	events := &fakeEvents{badges: map[string][]service.BadgeRow{
		claimKey("E2", testDay): workDayRows(testDay),
	}}
	// E1's source queries blow up; E2 still completes.
	failing := &failingEvents{inner: events, failFor: "E1"}

	result, err := newTestEngine(t, dir, &fakeClaims{}, failing, &fakeSink{}).Batch(context.Background(), Request{
		EmployeeIDs: []string{"E1", "E2"},
		From:        testDay,
		To:          testDay,
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "E2", result.Results[0].EmployeeID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "E1", result.Errors[0].EmployeeID)
	assert.Equal(t, 1, result.Summary.Failed)
}

type failingEvents struct {
	inner   *fakeEvents
	failFor string
}

func (f *failingEvents) BadgeRows(ctx context.Context, id string, day time.Time) ([]service.BadgeRow, error) {
	if id == f.failFor {
		return nil, errors.New("source offline")
	}
	return f.inner.BadgeRows(ctx, id, day)
}

func (f *failingEvents) MealRows(ctx context.Context, id string, day time.Time) ([]service.MealRow, error) {
	return f.inner.MealRows(ctx, id, day)
}

func (f *failingEvents) MeetingRows(ctx context.Context, id string, day time.Time) ([]service.MeetingRow, error) {
	return f.inner.MeetingRows(ctx, id, day)
}

func (f *failingEvents) MailRows(ctx context.Context, id string, day time.Time) ([]service.ActionRow, error) {
	return f.inner.MailRows(ctx, id, day)
}

func (f *failingEvents) ApprovalRows(ctx context.Context, id string, day time.Time) ([]service.ActionRow, error) {
	return f.inner.ApprovalRows(ctx, id, day)
}

func (f *failingEvents) EquipmentRows(ctx context.Context, id string, day time.Time) ([]service.ActionRow, error) {
	return f.inner.EquipmentRows(ctx, id, day)
}

func TestBatchCancelReturnsPartial(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*model.EmployeeProfile{"E1": testProfile("E1")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestEngine(t, dir, &fakeClaims{}, &fakeEvents{}, &fakeSink{}).Batch(ctx, Request{
		EmployeeIDs: []string{"E1"},
		From:        testDay,
		To:          testDay.AddDate(0, 0, 4),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	// Every unit is still accounted for.
	s := result.Summary
	assert.Equal(t, s.TotalUnits, s.Processed+s.Skipped+s.Failed)
}

func TestBatchNightShiftSumsClaims(t *testing.T) {
	prev := testDay.AddDate(0, 0, -1)
	dir := &fakeDirectory{profiles: map[string]*model.EmployeeProfile{"E1": testProfile("E1")}}
	claims := &fakeClaims{claims: map[string]float64{
		claimKey("E1", testDay): 4.0,
		claimKey("E1", prev):    5.0,
	}}
	events := &fakeEvents{badges: map[string][]service.BadgeRow{
		// The day query finds only the carryover morning; detection flips to
		// night and the re-enrichment pulls the previous evening too.
		claimKey("E1", testDay): {
			badge(testDay, 2, 0, "assembly line"),
			badge(testDay, 7, 0, "gate out"),
		},
		claimKey("E1", prev): {
			badge(prev, 22, 0, "gate in"),
			badge(prev, 23, 0, "assembly line"),
		},
	}}

	result, err := newTestEngine(t, dir, claims, events, &fakeSink{}).Batch(context.Background(), Request{
		EmployeeIDs: []string{"E1"},
		From:        testDay,
		To:          testDay,
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	r := result.Results[0]
	assert.Equal(t, model.ShiftNight, r.Shift)
	require.NotNil(t, r.ClaimedHours)
	assert.InDelta(t, 9.0, *r.ClaimedHours, 1e-9, "night claim must sum both calendar days")
	assert.Equal(t, 1, result.Summary.NightShifts)
}

func TestBatchProgressMonotonic(t *testing.T) {
	profiles := make(map[string]*model.EmployeeProfile)
	badges := make(map[string][]service.BadgeRow)
	var ids []string
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("E%d", i)
		ids = append(ids, id)
		profiles[id] = testProfile(id)
		badges[claimKey(id, testDay)] = workDayRows(testDay)
	}
	dir := &fakeDirectory{profiles: profiles}
	events := &fakeEvents{badges: badges}

	progress := make(chan Progress, 128)
	result, err := newTestEngine(t, dir, &fakeClaims{}, events, &fakeSink{}).Batch(context.Background(), Request{
		EmployeeIDs: ids,
		From:        testDay,
		To:          testDay,
		Progress:    progress,
	})
	require.NoError(t, err)
	assert.Len(t, result.Results, 5)
	close(progress)

	last := 0
	for p := range progress {
		assert.Greater(t, p.Completed, last, "progress must only move forward")
		assert.Equal(t, 5, p.Total)
		last = p.Completed
	}
	assert.Equal(t, 5, last)
}

func TestBatchSinkFailureIsNotFatal(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*model.EmployeeProfile{"E1": testProfile("E1")}}
	events := &fakeEvents{badges: map[string][]service.BadgeRow{
		claimKey("E1", testDay): workDayRows(testDay),
	}}
	sink := &fakeSink{err: fmt.Errorf("%w: disk full", common.ErrPersistence)}

	result, err := newTestEngine(t, dir, &fakeClaims{}, events, sink).Batch(context.Background(), Request{
		EmployeeIDs: []string{"E1"},
		From:        testDay,
		To:          testDay,
	})
	require.NoError(t, err)
	assert.Len(t, result.Results, 1, "results are still returned when persistence fails")
}
