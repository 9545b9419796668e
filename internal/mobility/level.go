// Package mobility computes and serves the per-team "Ground Rules" baseline:
// how much of a team's corridor-transit time is legitimate work movement.
package mobility

import (
	"strings"

	"github.com/soleview/worklens/internal/model"
)

// TeamTypeRule maps team-name keywords to a team type. Rules are evaluated
// in order; the first match wins.
type TeamTypeRule struct {
	Type     model.TeamType
	Keywords []string
}

// DefaultTeamTypeRules returns the ordered team-name keyword table. Field
// keywords are checked first so "QC planning" classifies as FIELD.
func DefaultTeamTypeRules() []TeamTypeRule {
	return []TeamTypeRule{
		{Type: model.TeamField, Keywords: []string{
			"plant", "manufacturing", "production", "qc", "qa", "quality",
			"safety", "environment", "facility", "maintenance", "operations",
		}},
		{Type: model.TeamOffice, Keywords: []string{
			"hr", "strategy", "planning", "finance", "legal", "audit",
			"r&d", "dev", "lab", "research",
		}},
	}
}

// TeamTypeFor classifies a team by its name.
func TeamTypeFor(rules []TeamTypeRule, teamName string) model.TeamType {
	lower := strings.ToLower(teamName)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Type
			}
		}
	}
	return model.TeamUnknown
}

// RatioRule maps a minimum T1-to-O ratio to a mobility level. Ladders are
// evaluated top-down; the first rule whose Min the ratio meets wins.
type RatioRule struct {
	Min   float64
	Level model.MobilityLevel
}

// The three mobility ladders. The UNKNOWN ladder deliberately preserves the
// source system's overlapping cutoffs (both 50 and 5.0 map to HIGH) as one
// canonical ordered table; see DESIGN.md for the open-question record.
var (
	officeLadder = []RatioRule{
		{Min: 50, Level: model.MobilityHigh},
		{Min: 10, Level: model.MobilityMedium},
		{Min: 2.0, Level: model.MobilityLow},
	}
	fieldLadder = []RatioRule{
		{Min: 50, Level: model.MobilityVeryHigh},
		{Min: 5.0, Level: model.MobilityHigh},
		{Min: 1.0, Level: model.MobilityMedium},
	}
	unknownLadder = []RatioRule{
		{Min: 100, Level: model.MobilityVeryHigh},
		{Min: 50, Level: model.MobilityHigh},
		{Min: 30, Level: model.MobilityMedium},
		{Min: 5.0, Level: model.MobilityHigh},
		{Min: 2.0, Level: model.MobilityMedium},
		{Min: 0.5, Level: model.MobilityLow},
	}
)

// veryHighRatio short-circuits every ladder: teams beyond it are extreme
// outliers (facility/infrastructure crews) regardless of type.
const veryHighRatio = 200

// LevelFor resolves the mobility level for a T1-to-O ratio and team type.
// FIELD teams floor at MEDIUM: field work always involves real movement.
func LevelFor(ratio float64, teamType model.TeamType) model.MobilityLevel {
	if ratio >= veryHighRatio {
		return model.MobilityVeryHigh
	}

	var ladder []RatioRule
	var floor model.MobilityLevel

	switch teamType {
	case model.TeamOffice:
		ladder, floor = officeLadder, model.MobilityVeryLow
	case model.TeamField:
		ladder, floor = fieldLadder, model.MobilityMedium
	default:
		ladder, floor = unknownLadder, model.MobilityVeryLow
	}

	for _, rule := range ladder {
		if ratio >= rule.Min {
			return rule.Level
		}
	}
	return floor
}

// baselineConfidence is the fixed fraction of a team's T1 minutes attributed
// to legitimate work movement at each mobility level.
var baselineConfidence = map[model.MobilityLevel]float64{
	model.MobilityVeryHigh: 0.65,
	model.MobilityHigh:     0.50,
	model.MobilityMedium:   0.35,
	model.MobilityLow:      0.25,
	model.MobilityVeryLow:  0.20,
}

// BaselineConfidence returns the work-movement fraction for a mobility level.
func BaselineConfidence(level model.MobilityLevel) float64 {
	return baselineConfidence[level]
}

// levelRank orders mobility levels for comparisons.
var levelRank = map[model.MobilityLevel]int{
	model.MobilityVeryLow:  0,
	model.MobilityLow:      1,
	model.MobilityMedium:   2,
	model.MobilityHigh:     3,
	model.MobilityVeryHigh: 4,
}
