// Package metrics turns a classified employee-day timeline into work-hour
// figures, with an optional team-baseline enhancement and claim comparison.
package metrics

// AnomalyWeights controls the composition of the anomaly score. The three
// components are each normalized to [0,1] before weighting; weights should
// sum to 1 so the score stays on a 0 to 100 scale.
type AnomalyWeights struct {
	RatioDeviation     float64 // day T1/O ratio vs team baseline ratio
	ConfidenceVariance float64 // spread of per-entry T1 confidences
	DwellOutliers      float64 // share of T1 entries dwelling past the cutoff
}

// Config carries the tunable thresholds of the calculator.
type Config struct {
	// FocusMinOTags is the number of system-confirmed work actions a clock
	// hour needs before its work minutes count as focus time.
	FocusMinOTags int

	// LongGapMinutes is the inter-event gap beyond which reliability drops.
	LongGapMinutes int
	// GapPenalty is the reliability deduction for a long gap, in points.
	GapPenalty float64
	// OTagBonus is the reliability credit when system actions corroborate
	// the badge stream on the day.
	OTagBonus float64

	// MatchToleranceHours is the claim deviation treated as a match.
	MatchToleranceHours float64
	// MinClaimHours is the smallest claim worth comparing against; below it
	// the percentage deviation is meaningless.
	MinClaimHours float64

	// T1LongDwellMinutes marks a transit dwell as an outlier for scoring.
	T1LongDwellMinutes int

	Anomaly AnomalyWeights
}

// DefaultConfig returns production thresholds.
func DefaultConfig() Config {
	return Config{
		FocusMinOTags:       2,
		LongGapMinutes:      120,
		GapPenalty:          10,
		OTagBonus:           5,
		MatchToleranceHours: 0.5,
		MinClaimHours:       1.0,
		T1LongDwellMinutes:  120,
		Anomaly: AnomalyWeights{
			RatioDeviation:     0.5,
			ConfidenceVariance: 0.2,
			DwellOutliers:      0.3,
		},
	}
}
