package metrics

import (
	"math"
	"time"

	"github.com/soleview/worklens/internal/model"
)

// CalculateEnhanced computes traditional metrics plus the Ground Rules
// enhancement: the day's corridor-transit minutes are split into work and
// non-work movement using the employee's team mobility baseline.
func (c *Calculator) CalculateEnhanced(employeeID string, date time.Time, timeline []model.TimelineEntry, profile model.TeamMobilityProfile) model.WorkMetrics {
	m := c.Calculate(employeeID, date, timeline)

	gr := &model.GroundRulesMetrics{
		TeamBaselineUsedPct: profile.BaselineConfidence * 100,
	}

	start, end := dayBounds(timeline)
	var t1Entries []model.TimelineEntry
	oCount := 0
	for i := start; i <= end && i < len(timeline); i++ {
		switch timeline[i].Event.TagCode {
		case model.TagT1:
			t1Entries = append(t1Entries, timeline[i])
		case model.TagO:
			oCount++
		}
		if timeline[i].Rule != "" {
			gr.AppliedRulesCount++
		}
	}

	t1Total := 0
	for _, entry := range t1Entries {
		t1Total += entry.DurationMinutes
	}

	// Exact partition: the non-work share is the remainder, never a second
	// multiplication, so the two halves always sum to the T1 total.
	gr.T1WorkMovement = float64(t1Total) * profile.BaselineConfidence
	gr.T1NonWorkMovement = float64(t1Total) - gr.T1WorkMovement
	gr.GroundRulesWorkTime = float64(m.WorkTime) + gr.T1WorkMovement

	gr.GroundRulesConfidence = c.groundRulesConfidence(timeline[start:end+1], profile.BaselineConfidence)
	gr.AnomalyScore = c.anomalyScore(t1Entries, oCount, profile)

	m.GroundRules = gr
	return m
}

// groundRulesConfidence is the duration-weighted entry confidence where each
// T1 entry's confidence is blended with the team baseline, on a 0-100 scale.
func (c *Calculator) groundRulesConfidence(timeline []model.TimelineEntry, baseline float64) float64 {
	var weighted, totalDur float64
	for _, entry := range timeline {
		dur := float64(entry.DurationMinutes)
		if dur <= 0 {
			continue
		}
		conf := entry.Confidence
		if entry.Event.TagCode == model.TagT1 {
			conf = (conf + baseline) / 2
		}
		weighted += conf * dur
		totalDur += dur
	}
	if totalDur == 0 {
		return 0
	}
	return clamp(weighted/totalDur*100, 0, 100)
}

// anomalyScore grades how far this day's movement pattern sits from the
// team's expectation, 0 to 100. Three weighted components: the day's T1/O
// ratio against the team ratio, the spread of T1 confidences, and the share
// of T1 dwells long enough to be breaks in disguise.
func (c *Calculator) anomalyScore(t1Entries []model.TimelineEntry, oCount int, profile model.TeamMobilityProfile) float64 {
	if len(t1Entries) == 0 {
		return 0
	}

	dayRatio := float64(len(t1Entries)) / math.Max(float64(oCount), 1)
	teamRatio := math.Max(profile.T1ToORatio, 1)
	ratioDev := math.Min(math.Abs(dayRatio-profile.T1ToORatio)/teamRatio, 1)

	var mean float64
	for _, entry := range t1Entries {
		mean += entry.Confidence
	}
	mean /= float64(len(t1Entries))
	var variance float64
	for _, entry := range t1Entries {
		d := entry.Confidence - mean
		variance += d * d
	}
	variance /= float64(len(t1Entries))
	// Confidence variance tops out at 0.25 for values in [0,1].
	confSpread := math.Min(variance*4, 1)

	outliers := 0
	for _, entry := range t1Entries {
		if entry.DurationMinutes >= c.cfg.T1LongDwellMinutes {
			outliers++
		}
	}
	outlierFrac := float64(outliers) / float64(len(t1Entries))

	w := c.cfg.Anomaly
	score := w.RatioDeviation*ratioDev + w.ConfidenceVariance*confSpread + w.DwellOutliers*outlierFrac
	return clamp(score*100, 0, 100)
}
