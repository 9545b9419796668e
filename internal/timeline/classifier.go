// Package timeline classifies enriched tag events into work-semantic states.
// Classification needs the full day's sorted event list first (first/last
// gate tags, two-event lookahead), so it runs as a second pass over the
// enricher's output rather than as a streaming machine.
package timeline

import (
	"time"

	"github.com/soleview/worklens/internal/model"
)

// Classifier assigns an activity state, judgment, and confidence to each
// event given its neighbors. It holds no mutable state: identical input
// always yields an identical timeline.
type Classifier struct {
	cfg Config
}

// New creates a classifier with the default confidence tables.
func New() *Classifier {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a classifier with custom tables.
func NewWithConfig(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// ClassifyEvent classifies one event in context. prev and next may be nil at
// the day's edges. isFirstTTag/isLastTTag mark the chronological first and
// last boundary gates (entry/exit readers, never corridor sensors), which
// bound the working day. isT1ToG1Pattern marks a T1 that is part of a short
// excursion closing in a work area.
func (c *Classifier) ClassifyEvent(current model.TagEvent, prev, next *model.TagEvent, jobGroup model.JobGroup, isFirstTTag, isLastTTag, isT1ToG1Pattern bool) model.TimelineEntry {
	duration := gapMinutes(current, next)
	if next == nil {
		duration = current.DurationMinutes
	}

	entry := model.TimelineEntry{
		Event:           current,
		DurationMinutes: duration,
	}

	// Boundary gates bounding the day always win.
	if current.TagCode.IsBoundaryGate() {
		if isFirstTTag {
			entry.State = model.StateEntry
			entry.Judgment = model.JudgmentClockIn
			entry.Confidence = 1.0
			return entry
		}
		if isLastTTag {
			entry.State = model.StateExit
			entry.Judgment = model.JudgmentClockOut
			entry.Confidence = 1.0
			return entry
		}
	}

	switch current.TagCode {
	case model.TagT2, model.TagT3:
		// A mid-day gate pass is a personal errand outside the facility.
		entry.State = model.StateNonWork
		entry.Judgment = model.JudgmentNonWork
		entry.Confidence = c.cfg.BaseConfidence[current.TagCode]

	case model.TagT1:
		entry.State = model.StateTransit
		entry.Judgment = model.JudgmentMovement
		entry.Confidence = c.cfg.BaseConfidence[model.TagT1]
		if isT1ToG1Pattern {
			entry.State = model.StateWork
			entry.Judgment = model.JudgmentWork
			entry.Rule = model.RuleT1G1Fold
			if conf, ok := c.cfg.T1FoldConfidence[jobGroup]; ok {
				entry.Confidence = conf
			}
		} else if duration > c.cfg.T1LongDwellMinutes {
			entry.Rule = model.RuleT1LongDwell
		}

	case model.TagM1:
		entry.State = model.StateMeal
		entry.Judgment = model.JudgmentMeal
		entry.Confidence = c.cfg.BaseConfidence[model.TagM1]
		entry.DurationMinutes = c.cfg.MealDineInMinutes

	case model.TagM2:
		entry.State = model.StateMeal
		entry.Judgment = model.JudgmentMeal
		entry.Confidence = c.cfg.BaseConfidence[model.TagM2]
		entry.DurationMinutes = c.cfg.MealTakeoutMinutes

	case model.TagG3:
		entry.State = model.StateMeeting
		entry.Judgment = model.JudgmentWork
		entry.Confidence = c.cfg.BaseConfidence[model.TagG3]
		// A booked meeting may end before the next tag; trust the shorter.
		if current.DurationMinutes > 0 && (next == nil || current.DurationMinutes < duration) {
			entry.DurationMinutes = current.DurationMinutes
		}

	case model.TagG4:
		entry.State = model.StateEducation
		entry.Judgment = model.JudgmentWork
		entry.Confidence = c.cfg.BaseConfidence[model.TagG4]

	case model.TagN1, model.TagN2:
		entry.State = model.StateRest
		entry.Judgment = model.JudgmentNonWork
		entry.Confidence = c.cfg.BaseConfidence[current.TagCode]

	case model.TagG2:
		entry.Judgment = model.JudgmentWork
		entry.Confidence = c.cfg.BaseConfidence[model.TagG2]
		if prev == nil || prev.TagCode == model.TagT2 || prev.TagCode == model.TagT1 {
			// Gowning right after a gate is shift preparation.
			entry.State = model.StatePreparation
			entry.Rule = model.RuleG2Preparation
		} else {
			entry.State = model.StateWork
		}

	case model.TagO:
		entry.State = model.StateWork
		entry.Judgment = model.JudgmentFocused
		entry.Confidence = 1.0

	default: // G1 and anything unmapped
		entry.State = model.StateWork
		entry.Judgment = model.JudgmentWork
		entry.Confidence = c.g1Confidence(duration)
	}

	return entry
}

// g1Confidence scales work-area confidence with dwell time: a longer stay in
// a work area is stronger evidence of actual work.
func (c *Classifier) g1Confidence(duration int) float64 {
	switch {
	case duration < c.cfg.G1ShortDwellMinutes:
		return c.cfg.G1ShortConfidence
	case duration < c.cfg.G1MediumDwellMinutes:
		return c.cfg.G1MediumConfidence
	default:
		return c.cfg.G1LongConfidence
	}
}

func gapMinutes(current model.TagEvent, next *model.TagEvent) int {
	if next == nil {
		return 0
	}
	return int(next.Timestamp.Sub(current.Timestamp) / time.Minute)
}
