package model

import "time"

// WorkMetrics aggregates one classified employee-day timeline into
// work-hour figures. All durations are minutes.
type WorkMetrics struct {
	EmployeeID       string
	Date             time.Time
	TotalTime        int // ENTRY to EXIT span
	WorkTime         int // WORK + PREPARATION
	FocusTime        int // WORK minutes inside O-dense clock hours
	MeetingTime      int // MEETING + EDUCATION
	MealTime         int
	TransitTime      int
	RestTime         int
	WorkRatio        float64 // workTime / totalTime * 100
	ReliabilityScore float64 // 0-100
	GroundRules      *GroundRulesMetrics
}

// GroundRulesMetrics is the team-baseline enhancement of WorkMetrics.
// T1WorkMovement + T1NonWorkMovement always equals the day's total T1
// minutes exactly.
type GroundRulesMetrics struct {
	GroundRulesWorkTime   float64 // workTime + t1WorkMovement, minutes
	GroundRulesConfidence float64 // 0-100
	T1WorkMovement        float64 // minutes
	T1NonWorkMovement     float64 // minutes
	TeamBaselineUsedPct   float64 // applied baseline confidence, 0-100
	AnomalyScore          float64 // deviation from team expectation, 0-100
	AppliedRulesCount     int     // heuristics that fired while classifying
}

// AnomalyLevel grades an employee-day's deviation from its team baseline.
type AnomalyLevel string

// Anomaly levels.
const (
	AnomalyNone   AnomalyLevel = "none"
	AnomalyLow    AnomalyLevel = "low"
	AnomalyMedium AnomalyLevel = "medium"
	AnomalyHigh   AnomalyLevel = "high"
)

// AnomalyReport summarizes whether a day's movement pattern matches the
// team's expected pattern.
type AnomalyReport struct {
	HasAnomalies    bool
	Level           AnomalyLevel
	Summary         string
	Recommendations []string
}

// DeviationStatus relates a computed estimate to claimed hours.
type DeviationStatus string

// Deviation statuses.
const (
	DeviationUnder DeviationStatus = "under"
	DeviationOver  DeviationStatus = "over"
	DeviationMatch DeviationStatus = "match"
)

// Deviation is one estimate's distance from the claimed hours.
type Deviation struct {
	DifferenceHours float64
	Percentage      float64
	Status          DeviationStatus
}

// ComparisonResult contrasts the traditional and Ground-Rules work-time
// estimates against claimed hours. ImprovementPct is the reduction in
// absolute error achieved by the Ground-Rules estimate.
type ComparisonResult struct {
	ClaimedHours   float64
	Traditional    Deviation
	GroundRules    Deviation
	ImprovementPct float64
}
