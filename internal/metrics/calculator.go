package metrics

import (
	"time"

	"github.com/soleview/worklens/internal/model"
)

// Calculator aggregates timelines into WorkMetrics.
type Calculator struct {
	cfg Config
}

// New creates a Calculator with default thresholds.
func New() *Calculator {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Calculator with explicit thresholds.
func NewWithConfig(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate computes the traditional work-hour metrics for one employee-day.
// Only entries between the ENTRY and EXIT markers contribute; anything a
// badge reader caught outside the gates is not work time.
func (c *Calculator) Calculate(employeeID string, date time.Time, timeline []model.TimelineEntry) model.WorkMetrics {
	m := model.WorkMetrics{EmployeeID: employeeID, Date: date}
	if len(timeline) == 0 {
		return m
	}

	start, end := dayBounds(timeline)
	m.TotalTime = int(timeline[end].Event.Timestamp.Sub(timeline[start].Event.Timestamp).Minutes())

	for i := start; i <= end; i++ {
		entry := timeline[i]
		switch entry.State {
		case model.StateWork, model.StatePreparation:
			m.WorkTime += entry.DurationMinutes
		case model.StateMeeting, model.StateEducation:
			m.MeetingTime += entry.DurationMinutes
		case model.StateMeal:
			m.MealTime += entry.DurationMinutes
		case model.StateTransit:
			m.TransitTime += entry.DurationMinutes
		case model.StateRest:
			m.RestTime += entry.DurationMinutes
		}
	}

	m.FocusTime = c.focusTime(timeline[start : end+1])

	if m.TotalTime > 0 {
		m.WorkRatio = clamp(float64(m.WorkTime)/float64(m.TotalTime)*100, 0, 100)
	}
	m.ReliabilityScore = c.reliability(timeline[start : end+1])
	return m
}

// dayBounds returns the indexes of the ENTRY and EXIT markers, falling back
// to the first and last entry when a gate tag is missing.
func dayBounds(timeline []model.TimelineEntry) (start, end int) {
	start, end = 0, len(timeline)-1
	for i, entry := range timeline {
		if entry.State == model.StateEntry {
			start = i
			break
		}
	}
	for i := len(timeline) - 1; i >= 0; i-- {
		if timeline[i].State == model.StateExit {
			end = i
			break
		}
	}
	if end < start {
		start, end = 0, len(timeline)-1
	}
	return start, end
}

// focusTime sums work minutes inside clock hours dense with system-confirmed
// actions. Two or more O tags in one hour mean the person was demonstrably at
// a workstation for that hour's work entries.
func (c *Calculator) focusTime(timeline []model.TimelineEntry) int {
	type hourAgg struct {
		oTags       int
		workMinutes int
	}
	hours := make(map[int64]*hourAgg)

	for _, entry := range timeline {
		key := entry.Event.Timestamp.Truncate(time.Hour).Unix()
		agg := hours[key]
		if agg == nil {
			agg = &hourAgg{}
			hours[key] = agg
		}
		if entry.Event.TagCode == model.TagO {
			agg.oTags++
		}
		if entry.State == model.StateWork || entry.State == model.StatePreparation {
			agg.workMinutes += entry.DurationMinutes
		}
	}

	total := 0
	for _, agg := range hours {
		if agg.oTags >= c.cfg.FocusMinOTags {
			total += agg.workMinutes
		}
	}
	return total
}

// reliability scores how trustworthy the day's classification is: the
// duration-weighted average entry confidence, docked when the tag stream has
// a gap long enough to hide an unrecorded excursion and credited when system
// actions corroborate the badge stream.
func (c *Calculator) reliability(timeline []model.TimelineEntry) float64 {
	var weighted, totalDur float64
	oTags := 0
	for _, entry := range timeline {
		if entry.Event.TagCode == model.TagO {
			oTags++
		}
		dur := float64(entry.DurationMinutes)
		if dur <= 0 {
			continue
		}
		weighted += entry.Confidence * dur
		totalDur += dur
	}
	if totalDur == 0 {
		return 0
	}
	score := weighted / totalDur * 100

	longGap := time.Duration(c.cfg.LongGapMinutes) * time.Minute
	for i := 1; i < len(timeline); i++ {
		if timeline[i].Event.Timestamp.Sub(timeline[i-1].Event.Timestamp) > longGap {
			score -= c.cfg.GapPenalty
			break
		}
	}
	if oTags >= c.cfg.FocusMinOTags {
		score += c.cfg.OTagBonus
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
