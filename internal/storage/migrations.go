package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS employees (
					employee_id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					team_name TEXT,
					center_name TEXT,
					department TEXT,
					position TEXT,
					work_schedule_type TEXT,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS badge_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					employee_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					location TEXT NOT NULL
				)`,
				`CREATE INDEX idx_badge_events_emp_ts ON badge_events(employee_id, timestamp)`,

				`CREATE TABLE IF NOT EXISTS meal_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					employee_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					cafeteria TEXT,
					takeout INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_meal_events_emp_ts ON meal_events(employee_id, timestamp)`,

				`CREATE TABLE IF NOT EXISTS meeting_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					employee_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					end_time DATETIME,
					kind TEXT
				)`,
				`CREATE INDEX idx_meeting_events_emp_ts ON meeting_events(employee_id, timestamp)`,

				`CREATE TABLE IF NOT EXISTS mail_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					employee_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					system TEXT
				)`,
				`CREATE INDEX idx_mail_events_emp_ts ON mail_events(employee_id, timestamp)`,

				`CREATE TABLE IF NOT EXISTS approval_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					employee_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					system TEXT
				)`,
				`CREATE INDEX idx_approval_events_emp_ts ON approval_events(employee_id, timestamp)`,

				`CREATE TABLE IF NOT EXISTS equipment_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					employee_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					system TEXT
				)`,
				`CREATE INDEX idx_equipment_events_emp_ts ON equipment_events(employee_id, timestamp)`,

				`CREATE TABLE IF NOT EXISTS claims (
					employee_id TEXT NOT NULL,
					date TEXT NOT NULL,
					start_time DATETIME,
					end_time DATETIME,
					claimed_hours REAL NOT NULL DEFAULT 0,
					excluded_minutes INTEGER NOT NULL DEFAULT 0,
					leave_type TEXT,
					PRIMARY KEY (employee_id, date)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Team tag aggregates for the mobility baseline",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS team_tag_stats (
					team_name TEXT NOT NULL,
					work_schedule_type TEXT NOT NULL,
					total_events INTEGER NOT NULL DEFAULT 0,
					t1_events INTEGER NOT NULL DEFAULT 0,
					o_events INTEGER NOT NULL DEFAULT 0,
					team_size INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (team_name, work_schedule_type)
				)`)
			if err != nil {
				return fmt.Errorf("failed to create team_tag_stats: %w", err)
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Analysis results",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS analysis_results (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id TEXT NOT NULL,
					employee_id TEXT NOT NULL,
					date TEXT NOT NULL,
					employee_name TEXT,
					team_name TEXT,
					center_name TEXT,
					shift TEXT NOT NULL,
					total_time INTEGER NOT NULL DEFAULT 0,
					work_time INTEGER NOT NULL DEFAULT 0,
					focus_time INTEGER NOT NULL DEFAULT 0,
					meeting_time INTEGER NOT NULL DEFAULT 0,
					meal_time INTEGER NOT NULL DEFAULT 0,
					transit_time INTEGER NOT NULL DEFAULT 0,
					rest_time INTEGER NOT NULL DEFAULT 0,
					work_ratio REAL NOT NULL DEFAULT 0,
					reliability_score REAL NOT NULL DEFAULT 0,
					gr_work_time REAL,
					gr_confidence REAL,
					gr_t1_work REAL,
					gr_t1_nonwork REAL,
					gr_baseline_pct REAL,
					gr_anomaly_score REAL,
					gr_applied_rules INTEGER,
					claimed_hours REAL,
					improvement_pct REAL,
					anomaly_level TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (run_id, employee_id, date)
				)`,
				`CREATE INDEX idx_analysis_results_emp_date ON analysis_results(employee_id, date)`,
				`CREATE INDEX idx_analysis_results_run ON analysis_results(run_id)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}
