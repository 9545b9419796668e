package timeline

import (
	"time"

	"github.com/soleview/worklens/internal/model"
)

// Build classifies a full day of sorted, deduplicated events into a
// timeline. It locates the day-bounding gate tags, then classifies every
// event with one-behind/one-ahead/two-ahead context.
func (c *Classifier) Build(events []model.TagEvent, jobGroup model.JobGroup) []model.TimelineEntry {
	if len(events) == 0 {
		return nil
	}

	firstT, lastT := gateBounds(events)

	entries := make([]model.TimelineEntry, 0, len(events))
	for i := range events {
		var prev, next *model.TagEvent
		if i > 0 {
			prev = &events[i-1]
		}
		if i < len(events)-1 {
			next = &events[i+1]
		}

		entries = append(entries, c.ClassifyEvent(
			events[i],
			prev,
			next,
			jobGroup,
			i == firstT,
			i == lastT && lastT != firstT,
			c.isT1ToG1Pattern(events, i),
		))
	}

	return entries
}

// gateBounds returns the indexes of the chronologically first and last
// boundary gate tags, or -1 when the day has none. Only entry and exit
// readers bound the day; a corridor sensor is interior movement and can
// never clock anyone in or out.
func gateBounds(events []model.TagEvent) (first, last int) {
	first, last = -1, -1
	for i := range events {
		if events[i].TagCode.IsBoundaryGate() {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	return first, last
}

// isT1ToG1Pattern reports whether the T1 at index i belongs to a short
// excursion that closes in a work area within the fold window: either
// T1->G1 directly, or T1->T1->G1 with the closing hop inside the window.
// Such movement is a work-area errand, not a personal break.
func (c *Classifier) isT1ToG1Pattern(events []model.TagEvent, i int) bool {
	if events[i].TagCode != model.TagT1 {
		return false
	}

	window := time.Duration(c.cfg.T1ToG1WindowMinutes) * time.Minute

	if i+1 < len(events) && events[i+1].TagCode == model.TagG1 {
		return events[i+1].Timestamp.Sub(events[i].Timestamp) <= window
	}

	if i+2 < len(events) && events[i+1].TagCode == model.TagT1 && events[i+2].TagCode == model.TagG1 {
		return events[i+2].Timestamp.Sub(events[i+1].Timestamp) <= window
	}

	return false
}
