package storage

import (
	"context"
	"fmt"

	"github.com/soleview/worklens/internal/model"
)

// TeamStats returns every team's historical tag aggregate.
func (s *SQLiteStorage) TeamStats(ctx context.Context) ([]model.TeamTagStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT team_name, work_schedule_type, total_events, t1_events, o_events, team_size
		FROM team_tag_stats
		ORDER BY team_name, work_schedule_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.TeamTagStats{}
	for rows.Next() {
		var st model.TeamTagStats
		if err := rows.Scan(&st.TeamName, &st.WorkScheduleType,
			&st.TotalEvents, &st.T1Events, &st.OEvents, &st.TeamSize); err != nil {
			return nil, fmt.Errorf("failed to scan team stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// SaveTeamStats upserts team aggregates, written by the periodic stats job.
func (s *SQLiteStorage) SaveTeamStats(ctx context.Context, stats []model.TeamTagStats) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO team_tag_stats (team_name, work_schedule_type, total_events, t1_events, o_events, team_size)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(team_name, work_schedule_type) DO UPDATE SET
			total_events = excluded.total_events,
			t1_events = excluded.t1_events,
			o_events = excluded.o_events,
			team_size = excluded.team_size,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, st := range stats {
		if _, err := stmt.ExecContext(ctx, st.TeamName, st.WorkScheduleType,
			st.TotalEvents, st.T1Events, st.OEvents, st.TeamSize); err != nil {
			return fmt.Errorf("failed to save stats for %s: %w", st.TeamName, err)
		}
	}
	return tx.Commit()
}
