package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
)

// GetEmployee returns the master record for one employee. Missing employees
// surface common.ErrProfileNotFound so callers can skip rather than fail.
func (s *SQLiteStorage) GetEmployee(ctx context.Context, employeeID string) (*model.EmployeeProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(employeeID, "employeeID"); err != nil {
		return nil, err
	}

	var p model.EmployeeProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, name,
		       COALESCE(team_name, ''), COALESCE(center_name, ''),
		       COALESCE(department, ''), COALESCE(position, ''),
		       COALESCE(work_schedule_type, '')
		FROM employees WHERE employee_id = ?`, employeeID).Scan(
		&p.EmployeeID, &p.Name, &p.TeamName, &p.CenterName,
		&p.Department, &p.Position, &p.WorkScheduleType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrProfileNotFound, employeeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &p, nil
}

// SaveEmployees upserts employee master records in one transaction.
func (s *SQLiteStorage) SaveEmployees(ctx context.Context, profiles []model.EmployeeProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(profiles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO employees (employee_id, name, team_name, center_name, department, position, work_schedule_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			name = excluded.name,
			team_name = excluded.team_name,
			center_name = excluded.center_name,
			department = excluded.department,
			position = excluded.position,
			work_schedule_type = excluded.work_schedule_type,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range profiles {
		if _, err := stmt.ExecContext(ctx, p.EmployeeID, p.Name, p.TeamName,
			p.CenterName, p.Department, p.Position, p.WorkScheduleType); err != nil {
			return fmt.Errorf("failed to save employee %s: %w", p.EmployeeID, err)
		}
	}
	return tx.Commit()
}

// ListEmployeeIDs returns every known employee id, ordered.
func (s *SQLiteStorage) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT employee_id FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
