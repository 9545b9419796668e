package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/soleview/worklens/internal/service"
)

// BadgeRows returns the badge reader rows for one employee-day.
func (s *SQLiteStorage) BadgeRows(ctx context.Context, employeeID string, day time.Time) ([]service.BadgeRow, error) {
	if err := validateEventQuery(ctx, employeeID, day); err != nil {
		return nil, err
	}
	start, end := dayRange(day)

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, location FROM badge_events
		WHERE employee_id = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp`, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []service.BadgeRow{}
	for rows.Next() {
		var r service.BadgeRow
		if err := rows.Scan(&r.Timestamp, &r.Location); err != nil {
			return nil, fmt.Errorf("failed to scan badge event: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MealRows returns the meal transaction rows for one employee-day.
func (s *SQLiteStorage) MealRows(ctx context.Context, employeeID string, day time.Time) ([]service.MealRow, error) {
	if err := validateEventQuery(ctx, employeeID, day); err != nil {
		return nil, err
	}
	start, end := dayRange(day)

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, COALESCE(cafeteria, ''), takeout FROM meal_events
		WHERE employee_id = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp`, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []service.MealRow{}
	for rows.Next() {
		var r service.MealRow
		var takeout int
		if err := rows.Scan(&r.Timestamp, &r.Cafeteria, &takeout); err != nil {
			return nil, fmt.Errorf("failed to scan meal event: %w", err)
		}
		r.Takeout = takeout != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// MeetingRows returns the meeting booking rows for one employee-day.
func (s *SQLiteStorage) MeetingRows(ctx context.Context, employeeID string, day time.Time) ([]service.MeetingRow, error) {
	if err := validateEventQuery(ctx, employeeID, day); err != nil {
		return nil, err
	}
	start, end := dayRange(day)

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, end_time, COALESCE(kind, '') FROM meeting_events
		WHERE employee_id = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp`, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query meeting events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []service.MeetingRow{}
	for rows.Next() {
		var r service.MeetingRow
		var endTime sql.NullTime
		if err := rows.Scan(&r.Timestamp, &endTime, &r.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan meeting event: %w", err)
		}
		if endTime.Valid {
			r.EndTime = endTime.Time
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MailRows returns mail-send action rows for one employee-day.
func (s *SQLiteStorage) MailRows(ctx context.Context, employeeID string, day time.Time) ([]service.ActionRow, error) {
	return s.actionRows(ctx, "mail_events", employeeID, day)
}

// ApprovalRows returns approval action rows for one employee-day.
func (s *SQLiteStorage) ApprovalRows(ctx context.Context, employeeID string, day time.Time) ([]service.ActionRow, error) {
	return s.actionRows(ctx, "approval_events", employeeID, day)
}

// EquipmentRows returns equipment-system action rows for one employee-day.
func (s *SQLiteStorage) EquipmentRows(ctx context.Context, employeeID string, day time.Time) ([]service.ActionRow, error) {
	return s.actionRows(ctx, "equipment_events", employeeID, day)
}

func (s *SQLiteStorage) actionRows(ctx context.Context, table, employeeID string, day time.Time) ([]service.ActionRow, error) {
	if err := validateEventQuery(ctx, employeeID, day); err != nil {
		return nil, err
	}
	start, end := dayRange(day)

	// table comes from a fixed internal set, never caller input.
	query := fmt.Sprintf(`
		SELECT timestamp, COALESCE(system, '') FROM %s
		WHERE employee_id = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp`, table)
	rows, err := s.db.QueryContext(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	out := []service.ActionRow{}
	for rows.Next() {
		var r service.ActionRow
		if err := rows.Scan(&r.Timestamp, &r.System); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func validateEventQuery(ctx context.Context, employeeID string, day time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(employeeID, "employeeID"); err != nil {
		return err
	}
	return validateDay(day, "day")
}

// InsertBadgeRows bulk-loads badge rows for one employee, for ingest tooling.
func (s *SQLiteStorage) InsertBadgeRows(ctx context.Context, employeeID string, rows []service.BadgeRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO badge_events (employee_id, timestamp, location) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, employeeID, r.Timestamp, r.Location); err != nil {
			return fmt.Errorf("failed to insert badge event: %w", err)
		}
	}
	return tx.Commit()
}
