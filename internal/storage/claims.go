package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
)

// GetClaim returns the self-reported attendance for one employee-day.
// Missing claims surface common.ErrClaimNotFound.
func (s *SQLiteStorage) GetClaim(ctx context.Context, employeeID string, date time.Time) (*model.ClaimRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(employeeID, "employeeID"); err != nil {
		return nil, err
	}
	if err := validateDay(date, "date"); err != nil {
		return nil, err
	}

	var (
		c          model.ClaimRecord
		dateStr    string
		start, end sql.NullTime
		leaveType  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, date, start_time, end_time, claimed_hours, excluded_minutes, leave_type
		FROM claims WHERE employee_id = ? AND date = ?`,
		employeeID, dateKey(date)).Scan(
		&c.EmployeeID, &dateStr, &start, &end, &c.ClaimedHours, &c.ExcludedMinutes, &leaveType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s on %s", common.ErrClaimNotFound, employeeID, dateKey(date))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	c.Date, err = time.ParseInLocation("2006-01-02", dateStr, date.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to parse claim date %q: %w", dateStr, err)
	}
	if start.Valid {
		c.StartTime = start.Time
	}
	if end.Valid {
		c.EndTime = end.Time
	}
	if leaveType.Valid {
		c.LeaveType = leaveType.String
	}
	return &c, nil
}

// SaveClaims upserts claim records in one transaction.
func (s *SQLiteStorage) SaveClaims(ctx context.Context, claims []model.ClaimRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(claims) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO claims (employee_id, date, start_time, end_time, claimed_hours, excluded_minutes, leave_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			claimed_hours = excluded.claimed_hours,
			excluded_minutes = excluded.excluded_minutes,
			leave_type = excluded.leave_type`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range claims {
		var start, end any
		if !c.StartTime.IsZero() {
			start = c.StartTime
		}
		if !c.EndTime.IsZero() {
			end = c.EndTime
		}
		if _, err := stmt.ExecContext(ctx, c.EmployeeID, dateKey(c.Date),
			start, end, c.ClaimedHours, c.ExcludedMinutes, c.LeaveType); err != nil {
			return fmt.Errorf("failed to save claim for %s: %w", c.EmployeeID, err)
		}
	}
	return tx.Commit()
}
