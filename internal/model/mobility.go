package model

// TeamType is the name-derived character of a team's work.
type TeamType string

// Team types.
const (
	TeamOffice  TeamType = "OFFICE"
	TeamField   TeamType = "FIELD"
	TeamUnknown TeamType = "UNKNOWN"
)

// MobilityLevel classifies how much legitimate transit a team generates
// relative to confirmed work actions.
type MobilityLevel string

// Mobility levels, lowest to highest.
const (
	MobilityVeryLow  MobilityLevel = "VERY_LOW"
	MobilityLow      MobilityLevel = "LOW"
	MobilityMedium   MobilityLevel = "MEDIUM"
	MobilityHigh     MobilityLevel = "HIGH"
	MobilityVeryHigh MobilityLevel = "VERY_HIGH"
)

// TeamTagStats is a historical per-team aggregate over a rolling window,
// written by a separate periodic job.
type TeamTagStats struct {
	TeamName         string
	WorkScheduleType string
	TotalEvents      int
	T1Events         int
	OEvents          int
	TeamSize         int
}

// TeamMobilityProfile is the computed "Ground Rules" baseline for one
// team + work-schedule combination. Read-only at classification time.
type TeamMobilityProfile struct {
	TeamName           string
	WorkScheduleType   string
	TeamType           TeamType
	MobilityLevel      MobilityLevel
	TotalEvents        int
	T1Events           int
	OEvents            int
	T1ToORatio         float64
	BaselineConfidence float64 // fraction of T1 minutes attributed to work movement, in [0,1]
}
