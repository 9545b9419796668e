package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/metrics"
	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
)

// anomalousScoreCutoff is the anomaly score above which a day counts as
// anomalous in the batch summary.
const anomalousScoreCutoff = 20

type employeeOutcome struct {
	results     []service.DayResult
	errors      []service.UnitError
	skipped     int
	nightShifts int
	anomalous   int
}

// analyzeEmployee runs one employee's dates in ascending order. A failed
// date is recorded and the next date still runs; only cancellation stops
// the loop early.
func (e *Engine) analyzeEmployee(ctx context.Context, runID, employeeID string, dates []time.Time) employeeOutcome {
	var oc employeeOutcome

	profile, err := e.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, common.ErrProfileNotFound) {
			e.logger.Warn("employee not found, skipping", "employee_id", employeeID)
			oc.skipped = len(dates)
			return oc
		}
		for _, date := range dates {
			oc.errors = append(oc.errors, service.UnitError{Date: date, EmployeeID: employeeID, Err: err})
		}
		return oc
	}
	group := e.jobs.Classify(profile)

	for _, date := range dates {
		if ctx.Err() != nil {
			break
		}
		result, err := e.analyzeDay(ctx, runID, profile, group, date)
		switch {
		case err != nil && common.IsSkippable(err):
			oc.skipped++
		case err != nil:
			oc.errors = append(oc.errors, service.UnitError{Date: date, EmployeeID: employeeID, Err: err})
		default:
			oc.results = append(oc.results, *result)
			if result.Shift == model.ShiftNight {
				oc.nightShifts++
			}
			if gr := result.Metrics.GroundRules; gr != nil && gr.AnomalyScore > anomalousScoreCutoff {
				oc.anomalous++
			}
		}
	}

	if e.cfg.SaveResults && e.sink != nil && len(oc.results) > 0 {
		saveErr := common.WithRetry(ctx, func() error {
			return e.sink.SaveResults(ctx, oc.results)
		}, e.cfg.Retry)
		if saveErr != nil {
			common.LogError(saveErr, "saving results", common.Fields{
				"run_id":      runID,
				"employee_id": employeeID,
				"results":     len(oc.results),
			})
		}
	}
	return oc
}

// analyzeDay runs the full pipeline for one employee-day. Skippable
// sentinel errors mean "nothing to analyze", not failure.
func (e *Engine) analyzeDay(ctx context.Context, runID string, profile *model.EmployeeProfile, group model.JobGroup, date time.Time) (*service.DayResult, error) {
	events, err := e.enricher.Enrich(ctx, profile.EmployeeID, date, model.ShiftDay)
	if err != nil {
		return nil, fmt.Errorf("enriching events: %w", err)
	}
	if len(events) == 0 {
		return nil, common.ErrNoEvents
	}

	shift := e.enricher.DetectShiftType(events)
	if shift == model.ShiftNight {
		events, err = e.enricher.Enrich(ctx, profile.EmployeeID, date, model.ShiftNight)
		if err != nil {
			return nil, fmt.Errorf("enriching night window: %w", err)
		}
		if len(events) == 0 {
			return nil, common.ErrNoEvents
		}
	}

	entries := e.classifier.Build(events, group)

	var m model.WorkMetrics
	var report *model.AnomalyReport
	if e.cfg.UseGroundRules && e.baselines != nil {
		baseline, found := e.baselines.Lookup(profile.TeamName, profile.WorkScheduleType)
		if !found {
			common.LogDebug("no team baseline, using default", common.Fields{
				"team":        profile.TeamName,
				"employee_id": profile.EmployeeID,
			})
		}
		m = e.calculator.CalculateEnhanced(profile.EmployeeID, date, entries, baseline)
		r := metrics.GenerateAnomalyReport(m)
		report = &r
	} else {
		m = e.calculator.Calculate(profile.EmployeeID, date, entries)
	}

	result := &service.DayResult{
		Date:         date,
		RunID:        runID,
		EmployeeID:   profile.EmployeeID,
		EmployeeName: profile.Name,
		TeamName:     profile.TeamName,
		CenterName:   profile.CenterName,
		Shift:        shift,
		Metrics:      m,
		Anomalies:    report,
	}

	claimed, err := e.claimedHours(ctx, profile.EmployeeID, date, shift)
	if err != nil {
		if !errors.Is(err, common.ErrClaimNotFound) {
			common.LogError(err, "loading claim", common.Fields{
				"employee_id": profile.EmployeeID,
				"date":        date.Format("2006-01-02"),
			})
		}
		return result, nil
	}
	result.ClaimedHours = &claimed

	cmp, err := e.calculator.Compare(m, claimed)
	if err != nil {
		// A claim too small to compare against still leaves the metrics
		// themselves valid.
		if !errors.Is(err, common.ErrInsufficientClaim) {
			return nil, err
		}
		return result, nil
	}
	result.Comparison = &cmp
	return result, nil
}

// claimedHours resolves the hours claimed for the analyzed shift. A night
// window reaches back into the previous calendar day, so its claim is the
// sum of both days' records.
func (e *Engine) claimedHours(ctx context.Context, employeeID string, date time.Time, shift model.ShiftType) (float64, error) {
	claim, err := e.claims.GetClaim(ctx, employeeID, date)
	if err != nil {
		return 0, err
	}
	total := claim.ClaimedHours

	if shift == model.ShiftNight {
		prev, err := e.claims.GetClaim(ctx, employeeID, date.AddDate(0, 0, -1))
		if err == nil {
			total += prev.ClaimedHours
		} else if !errors.Is(err, common.ErrClaimNotFound) {
			return 0, err
		}
	}
	return total, nil
}
