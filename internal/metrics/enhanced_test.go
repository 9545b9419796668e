package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
)

func fieldProfile(baseline float64) model.TeamMobilityProfile {
	return model.TeamMobilityProfile{
		TeamName:           "Plant 1",
		TeamType:           model.TeamField,
		MobilityLevel:      model.MobilityMedium,
		T1ToORatio:         2.0,
		BaselineConfidence: baseline,
	}
}

// transitDay has 100 T1 minutes between the gates.
func transitDay() []model.TimelineEntry {
	return []model.TimelineEntry{
		entry(8, 0, model.TagT2, model.StateEntry, 10, 1.0),
		entry(8, 10, model.TagG1, model.StateWork, 110, 0.95),
		entry(10, 0, model.TagT1, model.StateTransit, 60, 0.85),
		entry(11, 0, model.TagO, model.StateWork, 60, 1.0),
		entry(12, 0, model.TagT1, model.StateTransit, 40, 0.85),
		entry(12, 40, model.TagG1, model.StateWork, 80, 0.95),
		entry(14, 0, model.TagT3, model.StateExit, 0, 1.0),
	}
}

func TestEnhancedPartitionIsExact(t *testing.T) {
	m := New().CalculateEnhanced("E100", day, transitDay(), fieldProfile(0.35))
	require.NotNil(t, m.GroundRules)
	gr := m.GroundRules

	assert.InDelta(t, 35.0, gr.T1WorkMovement, 1e-9)
	assert.InDelta(t, 65.0, gr.T1NonWorkMovement, 1e-9)
	// Partition law: the split always reassembles the T1 total exactly.
	assert.Equal(t, 100.0, gr.T1WorkMovement+gr.T1NonWorkMovement)

	assert.InDelta(t, float64(m.WorkTime)+35.0, gr.GroundRulesWorkTime, 1e-9)
	assert.InDelta(t, 35.0, gr.TeamBaselineUsedPct, 1e-9)
}

func TestEnhancedPartitionFollowsBaseline(t *testing.T) {
	timeline := transitDay()

	low := New().CalculateEnhanced("E100", day, timeline, fieldProfile(0.25))
	high := New().CalculateEnhanced("E100", day, timeline, fieldProfile(0.50))

	assert.InDelta(t, 25.0, low.GroundRules.T1WorkMovement, 1e-9)
	assert.InDelta(t, 50.0, high.GroundRules.T1WorkMovement, 1e-9)
	assert.Greater(t, high.GroundRules.GroundRulesWorkTime, low.GroundRules.GroundRulesWorkTime)
}

func TestEnhancedScoresWithinScale(t *testing.T) {
	m := New().CalculateEnhanced("E100", day, transitDay(), fieldProfile(0.35))
	gr := m.GroundRules

	assert.GreaterOrEqual(t, gr.GroundRulesConfidence, 0.0)
	assert.LessOrEqual(t, gr.GroundRulesConfidence, 100.0)
	assert.GreaterOrEqual(t, gr.AnomalyScore, 0.0)
	assert.LessOrEqual(t, gr.AnomalyScore, 100.0)
}

func TestEnhancedNoTransit(t *testing.T) {
	timeline := []model.TimelineEntry{
		entry(9, 0, model.TagT2, model.StateEntry, 60, 1.0),
		entry(10, 0, model.TagG1, model.StateWork, 60, 0.95),
		entry(11, 0, model.TagT3, model.StateExit, 0, 1.0),
	}

	m := New().CalculateEnhanced("E100", day, timeline, fieldProfile(0.35))
	gr := m.GroundRules
	require.NotNil(t, gr)

	assert.Zero(t, gr.T1WorkMovement)
	assert.Zero(t, gr.T1NonWorkMovement)
	assert.Zero(t, gr.AnomalyScore, "no transit means nothing to deviate")
	assert.Equal(t, float64(m.WorkTime), gr.GroundRulesWorkTime)
}

func TestAppliedRulesCounted(t *testing.T) {
	timeline := transitDay()
	timeline[2].Rule = model.RuleT1G1Fold
	timeline[4].Rule = model.RuleT1LongDwell

	m := New().CalculateEnhanced("E100", day, timeline, fieldProfile(0.35))
	assert.Equal(t, 2, m.GroundRules.AppliedRulesCount)
}

func TestCompareImprovement(t *testing.T) {
	// Claimed 9h; traditional estimate 8h (error 1h); ground rules adds
	// 30 T1-work minutes (error 0.5h) halving the error.
	m := model.WorkMetrics{
		WorkTime: 480,
		GroundRules: &model.GroundRulesMetrics{
			GroundRulesWorkTime: 510,
		},
	}

	result, err := New().Compare(m, 9.0)
	require.NoError(t, err)

	assert.InDelta(t, -1.0, result.Traditional.DifferenceHours, 1e-9)
	assert.Equal(t, model.DeviationUnder, result.Traditional.Status)
	assert.InDelta(t, -0.5, result.GroundRules.DifferenceHours, 1e-9)
	assert.InDelta(t, 50.0, result.ImprovementPct, 1e-9)
}

func TestCompareMatchTolerance(t *testing.T) {
	m := model.WorkMetrics{WorkTime: 485} // 8.08h vs 8h claimed

	result, err := New().Compare(m, 8.0)
	require.NoError(t, err)
	assert.Equal(t, model.DeviationMatch, result.Traditional.Status)
}

func TestCompareRejectsTinyClaims(t *testing.T) {
	m := model.WorkMetrics{WorkTime: 480}

	_, err := New().Compare(m, 0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInsufficientClaim)
}

func TestCompareZeroTraditionalError(t *testing.T) {
	m := model.WorkMetrics{
		WorkTime:    480,
		GroundRules: &model.GroundRulesMetrics{GroundRulesWorkTime: 500},
	}

	result, err := New().Compare(m, 8.0)
	require.NoError(t, err)
	assert.Zero(t, result.ImprovementPct, "no traditional error means no improvement to measure")
}

func TestGenerateAnomalyReportLevels(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  model.AnomalyLevel
	}{
		{"zero is none", 0, model.AnomalyNone},
		{"low band", 12, model.AnomalyLow},
		{"band edge twenty", 20, model.AnomalyLow},
		{"medium band", 35, model.AnomalyMedium},
		{"band edge fifty", 50, model.AnomalyMedium},
		{"high band", 70, model.AnomalyHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.WorkMetrics{
				GroundRules: &model.GroundRulesMetrics{
					AnomalyScore:          tt.score,
					GroundRulesConfidence: 80,
				},
			}
			report := GenerateAnomalyReport(m)
			assert.Equal(t, tt.want, report.Level)
			assert.Equal(t, tt.score > 0, report.HasAnomalies)
			assert.NotEmpty(t, report.Summary)
		})
	}
}

func TestGenerateAnomalyReportLowConfidenceNote(t *testing.T) {
	m := model.WorkMetrics{
		GroundRules: &model.GroundRulesMetrics{
			AnomalyScore:          10,
			GroundRulesConfidence: 30,
		},
	}
	report := GenerateAnomalyReport(m)
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[len(report.Recommendations)-1], "confidence is low")
}

func TestGenerateAnomalyReportWithoutGroundRules(t *testing.T) {
	report := GenerateAnomalyReport(model.WorkMetrics{})
	assert.False(t, report.HasAnomalies)
	assert.Equal(t, model.AnomalyNone, report.Level)
}
