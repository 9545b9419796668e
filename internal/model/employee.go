package model

import "time"

// JobGroup buckets employees by the character of their work; it parameterizes
// downstream classification thresholds.
type JobGroup string

// Job groups.
const (
	JobProduction JobGroup = "PRODUCTION"
	JobResearch   JobGroup = "RESEARCH"
	JobOffice     JobGroup = "OFFICE"
	JobManagement JobGroup = "MANAGEMENT"
)

// ShiftType distinguishes the day window from the midnight-spanning night
// window used when pulling raw events.
type ShiftType string

// Shift types.
const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
)

// EmployeeProfile is master data for one employee, fetched from an external
// directory and immutable per call.
type EmployeeProfile struct {
	EmployeeID       string
	Name             string
	TeamName         string
	CenterName       string
	Department       string
	Position         string
	WorkScheduleType string
}

// ClaimRecord is the self-reported attendance for one employee-day, used as
// ground truth when comparing computed work hours.
type ClaimRecord struct {
	EmployeeID      string
	Date            time.Time
	StartTime       time.Time
	EndTime         time.Time
	ClaimedHours    float64
	ExcludedMinutes int
	LeaveType       string
}
