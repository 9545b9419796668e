// Package service defines the interfaces for all external collaborators and
// the shared result types exchanged between them.
package service

import (
	"context"
	"time"

	"github.com/soleview/worklens/internal/model"
)

// EmployeeDirectory resolves employee master data.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID string) (*model.EmployeeProfile, error)
}

// ClaimStore serves self-reported attendance records. Implementations return
// common.ErrClaimNotFound when no claim exists for the employee-day.
type ClaimStore interface {
	GetClaim(ctx context.Context, employeeID string, date time.Time) (*model.ClaimRecord, error)
}

// BadgeRow is a raw badge/tag log row before canonical tag mapping.
type BadgeRow struct {
	Timestamp time.Time
	Location  string
}

// MealRow is a raw meal transaction row.
type MealRow struct {
	Timestamp time.Time
	Cafeteria string
	Takeout   bool
}

// MeetingRow is a raw meeting/education booking row. EndTime may be zero when
// the booking had no recorded end.
type MeetingRow struct {
	Timestamp time.Time
	EndTime   time.Time
	Kind      string
}

// ActionRow is a raw system-action row (mail send, approval, equipment login).
type ActionRow struct {
	Timestamp time.Time
	System    string
}

// EventStore serves raw per-source rows for one employee and calendar day.
// All methods return an empty slice, not an error, when no rows exist.
type EventStore interface {
	BadgeRows(ctx context.Context, employeeID string, day time.Time) ([]BadgeRow, error)
	MealRows(ctx context.Context, employeeID string, day time.Time) ([]MealRow, error)
	MeetingRows(ctx context.Context, employeeID string, day time.Time) ([]MeetingRow, error)
	MailRows(ctx context.Context, employeeID string, day time.Time) ([]ActionRow, error)
	ApprovalRows(ctx context.Context, employeeID string, day time.Time) ([]ActionRow, error)
	EquipmentRows(ctx context.Context, employeeID string, day time.Time) ([]ActionRow, error)
}

// MobilityStatsStore serves the historical per-team tag aggregates the
// baseline is computed from.
type MobilityStatsStore interface {
	TeamStats(ctx context.Context) ([]model.TeamTagStats, error)
}

// DayResult is the full output for one successfully analyzed employee-day.
type DayResult struct {
	Date         time.Time
	RunID        string
	EmployeeID   string
	EmployeeName string
	TeamName     string
	CenterName   string
	Shift        model.ShiftType
	Metrics      model.WorkMetrics
	ClaimedHours *float64
	Comparison   *model.ComparisonResult
	Anomalies    *model.AnomalyReport
}

// UnitError records one employee-day that failed. Unit failures never abort
// a batch.
type UnitError struct {
	Date       time.Time
	EmployeeID string
	Err        error
}

// BatchSummary accounts for every unit of a batch: each (employee, date)
// lands in exactly one of processed, skipped, or failed.
type BatchSummary struct {
	TotalUnits    int
	Processed     int
	Skipped       int
	Failed        int
	NightShifts   int
	AnomalousDays int
	Duration      time.Duration
}

// ResultSink persists analysis results. Implementations should batch writes.
type ResultSink interface {
	SaveResults(ctx context.Context, results []DayResult) error
}
