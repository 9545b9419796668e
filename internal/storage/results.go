package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
)

// SaveResults persists a batch of analyzed employee-days in one transaction.
// Re-running an analysis upserts over the previous run's rows for the same
// run id. Failures wrap common.ErrPersistence so callers can retry.
func (s *SQLiteStorage) SaveResults(ctx context.Context, results []service.DayResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_results (
			run_id, employee_id, date, employee_name, team_name, center_name, shift,
			total_time, work_time, focus_time, meeting_time, meal_time, transit_time, rest_time,
			work_ratio, reliability_score,
			gr_work_time, gr_confidence, gr_t1_work, gr_t1_nonwork, gr_baseline_pct,
			gr_anomaly_score, gr_applied_rules,
			claimed_hours, improvement_pct, anomaly_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, employee_id, date) DO UPDATE SET
			total_time = excluded.total_time,
			work_time = excluded.work_time,
			focus_time = excluded.focus_time,
			meeting_time = excluded.meeting_time,
			meal_time = excluded.meal_time,
			transit_time = excluded.transit_time,
			rest_time = excluded.rest_time,
			work_ratio = excluded.work_ratio,
			reliability_score = excluded.reliability_score,
			gr_work_time = excluded.gr_work_time,
			gr_confidence = excluded.gr_confidence,
			gr_t1_work = excluded.gr_t1_work,
			gr_t1_nonwork = excluded.gr_t1_nonwork,
			gr_baseline_pct = excluded.gr_baseline_pct,
			gr_anomaly_score = excluded.gr_anomaly_score,
			gr_applied_rules = excluded.gr_applied_rules,
			claimed_hours = excluded.claimed_hours,
			improvement_pct = excluded.improvement_pct,
			anomaly_level = excluded.anomaly_level`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %v", common.ErrPersistence, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range results {
		m := r.Metrics

		var grWork, grConf, grT1Work, grT1NonWork, grBaseline, grScore any
		var grRules any
		if gr := m.GroundRules; gr != nil {
			grWork, grConf = gr.GroundRulesWorkTime, gr.GroundRulesConfidence
			grT1Work, grT1NonWork = gr.T1WorkMovement, gr.T1NonWorkMovement
			grBaseline, grScore = gr.TeamBaselineUsedPct, gr.AnomalyScore
			grRules = gr.AppliedRulesCount
		}
		var claimed, improvement, anomalyLevel any
		if r.ClaimedHours != nil {
			claimed = *r.ClaimedHours
		}
		if r.Comparison != nil {
			improvement = r.Comparison.ImprovementPct
		}
		if r.Anomalies != nil {
			anomalyLevel = string(r.Anomalies.Level)
		}

		if _, err := stmt.ExecContext(ctx,
			r.RunID, r.EmployeeID, dateKey(r.Date), r.EmployeeName, r.TeamName, r.CenterName, string(r.Shift),
			m.TotalTime, m.WorkTime, m.FocusTime, m.MeetingTime, m.MealTime, m.TransitTime, m.RestTime,
			m.WorkRatio, m.ReliabilityScore,
			grWork, grConf, grT1Work, grT1NonWork, grBaseline, grScore, grRules,
			claimed, improvement, anomalyLevel); err != nil {
			return fmt.Errorf("%w: %s on %s: %v", common.ErrPersistence, r.EmployeeID, dateKey(r.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrPersistence, err)
	}
	return nil
}

// ListResults returns stored results for a run, ordered by employee then
// date. An empty runID returns the most recent row per employee-day across
// all runs.
func (s *SQLiteStorage) ListResults(ctx context.Context, runID string) ([]service.DayResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT run_id, employee_id, date, employee_name, team_name, center_name, shift,
		       total_time, work_time, focus_time, meeting_time, meal_time, transit_time, rest_time,
		       work_ratio, reliability_score,
		       gr_work_time, gr_confidence, gr_t1_work, gr_t1_nonwork, gr_baseline_pct,
		       gr_anomaly_score, gr_applied_rules,
		       claimed_hours, improvement_pct, anomaly_level
		FROM analysis_results`
	args := []any{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY employee_id, date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []service.DayResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanResult(rows *sql.Rows) (service.DayResult, error) {
	var (
		r       service.DayResult
		dateStr string
		shift   string

		grWork, grConf, grT1Work, grT1NonWork, grBaseline, grScore sql.NullFloat64
		grRules                                                    sql.NullInt64
		claimed, improvement                                       sql.NullFloat64
		anomalyLevel                                               sql.NullString
	)
	err := rows.Scan(
		&r.RunID, &r.EmployeeID, &dateStr, &r.EmployeeName, &r.TeamName, &r.CenterName, &shift,
		&r.Metrics.TotalTime, &r.Metrics.WorkTime, &r.Metrics.FocusTime, &r.Metrics.MeetingTime,
		&r.Metrics.MealTime, &r.Metrics.TransitTime, &r.Metrics.RestTime,
		&r.Metrics.WorkRatio, &r.Metrics.ReliabilityScore,
		&grWork, &grConf, &grT1Work, &grT1NonWork, &grBaseline, &grScore, &grRules,
		&claimed, &improvement, &anomalyLevel)
	if err != nil {
		return r, fmt.Errorf("failed to scan result: %w", err)
	}

	r.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return r, fmt.Errorf("failed to parse result date %q: %w", dateStr, err)
	}
	r.Shift = model.ShiftType(shift)
	r.Metrics.EmployeeID = r.EmployeeID
	r.Metrics.Date = r.Date

	if grWork.Valid {
		r.Metrics.GroundRules = &model.GroundRulesMetrics{
			GroundRulesWorkTime:   grWork.Float64,
			GroundRulesConfidence: grConf.Float64,
			T1WorkMovement:        grT1Work.Float64,
			T1NonWorkMovement:     grT1NonWork.Float64,
			TeamBaselineUsedPct:   grBaseline.Float64,
			AnomalyScore:          grScore.Float64,
			AppliedRulesCount:     int(grRules.Int64),
		}
	}
	if claimed.Valid {
		v := claimed.Float64
		r.ClaimedHours = &v
	}
	if improvement.Valid {
		r.Comparison = &model.ComparisonResult{ImprovementPct: improvement.Float64}
		if claimed.Valid {
			r.Comparison.ClaimedHours = claimed.Float64
		}
	}
	if anomalyLevel.Valid && anomalyLevel.String != "" {
		r.Anomalies = &model.AnomalyReport{
			HasAnomalies: anomalyLevel.String != string(model.AnomalyNone),
			Level:        model.AnomalyLevel(anomalyLevel.String),
		}
	}
	return r, nil
}
