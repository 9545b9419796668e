// Package enrich fuses raw per-source event rows into a canonical, ordered
// tag event stream for one employee-day.
package enrich

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
)

// Config holds enrichment tuning knobs.
type Config struct {
	DedupWindow      time.Duration // consecutive same-code events inside this window collapse
	LookupTimeout    time.Duration // per-source query budget
	NightStartHour   int           // night window opens at this hour of the previous day
	NightEndHour     int           // night window closes at this hour of the analysis day
	NightDetectAfter int           // first event at/after this hour implies night shift
	NightDetectUntil int           // first event before this hour implies carryover from a night shift
}

// DefaultConfig returns the default enrichment configuration.
func DefaultConfig() Config {
	return Config{
		DedupWindow:      60 * time.Second,
		LookupTimeout:    10 * time.Second,
		NightStartHour:   18,
		NightEndHour:     12,
		NightDetectAfter: 18,
		NightDetectUntil: 6,
	}
}

// Enricher pulls raw rows from every event source and normalizes them into
// sorted, deduplicated tag events.
type Enricher struct {
	store service.EventStore
	rules []KeywordRule
	cfg   Config
}

// New creates an enricher over the given event store with default rules.
func New(store service.EventStore) *Enricher {
	return NewWithConfig(store, DefaultLocationRules(), DefaultConfig())
}

// NewWithConfig creates an enricher with a custom rule table and config.
func NewWithConfig(store service.EventStore, rules []KeywordRule, cfg Config) *Enricher {
	return &Enricher{store: store, rules: rules, cfg: cfg}
}

// Enrich returns the canonical event stream for one employee-day. A day
// shift covers the calendar day; a night shift covers the previous day's
// evening through the analysis day's noon. No raw rows is not an error: the
// result is simply empty.
func (e *Enricher) Enrich(ctx context.Context, employeeID string, date time.Time, shift model.ShiftType) ([]model.TagEvent, error) {
	day := startOfDay(date)

	events, err := e.collectDay(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}

	if shift == model.ShiftNight {
		prev, err := e.collectDay(ctx, employeeID, day.AddDate(0, 0, -1))
		if err != nil {
			return nil, err
		}
		events = append(events, prev...)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	events = dedupe(events, e.cfg.DedupWindow)

	if shift == model.ShiftNight {
		start := day.AddDate(0, 0, -1).Add(time.Duration(e.cfg.NightStartHour) * time.Hour)
		end := day.Add(time.Duration(e.cfg.NightEndHour) * time.Hour)
		events = filterWindow(events, start, end)
	}

	return events, nil
}

// DetectShiftType infers the shift from the earliest event. Callers that
// enriched with the wrong window re-enrich with the opposite one.
func (e *Enricher) DetectShiftType(events []model.TagEvent) model.ShiftType {
	if len(events) == 0 {
		return model.ShiftDay
	}

	firstHour := events[0].Timestamp.Hour()
	if firstHour >= e.cfg.NightDetectAfter || firstHour < e.cfg.NightDetectUntil {
		return model.ShiftNight
	}

	return model.ShiftDay
}

// query runs one source lookup under its own timeout, so a slow source
// cannot starve the lookups after it.
func query[T any](ctx context.Context, timeout time.Duration, employeeID string, day time.Time, fn func(context.Context, string, time.Time) ([]T, error)) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx, employeeID, day)
}

// collectDay fuses all six sources for one calendar day. Malformed rows are
// dropped, not errored; a failed or timed-out source query fails the unit.
func (e *Enricher) collectDay(ctx context.Context, employeeID string, day time.Time) ([]model.TagEvent, error) {
	var events []model.TagEvent

	badges, err := query(ctx, e.cfg.LookupTimeout, employeeID, day, e.store.BadgeRows)
	if err != nil {
		return nil, fmt.Errorf("badge rows for %s: %w", employeeID, err)
	}
	for _, row := range badges {
		if row.Timestamp.IsZero() {
			common.LogDebug("Dropping malformed badge row", common.Fields{"employee_id": employeeID})
			continue
		}
		events = append(events, model.TagEvent{
			Timestamp:  row.Timestamp,
			EmployeeID: employeeID,
			Location:   row.Location,
			TagCode:    mapLocation(e.rules, row.Location),
			Source:     model.SourceBadge,
		})
	}

	meals, err := query(ctx, e.cfg.LookupTimeout, employeeID, day, e.store.MealRows)
	if err != nil {
		return nil, fmt.Errorf("meal rows for %s: %w", employeeID, err)
	}
	for _, row := range meals {
		if row.Timestamp.IsZero() {
			continue
		}
		code := model.TagM1
		if row.Takeout {
			code = model.TagM2
		}
		events = append(events, model.TagEvent{
			Timestamp:  row.Timestamp,
			EmployeeID: employeeID,
			Location:   row.Cafeteria,
			TagCode:    code,
			Source:     model.SourceMeal,
		})
	}

	meetings, err := query(ctx, e.cfg.LookupTimeout, employeeID, day, e.store.MeetingRows)
	if err != nil {
		return nil, fmt.Errorf("meeting rows for %s: %w", employeeID, err)
	}
	for _, row := range meetings {
		if row.Timestamp.IsZero() {
			continue
		}
		duration := 0
		if !row.EndTime.IsZero() && row.EndTime.After(row.Timestamp) {
			duration = int(row.EndTime.Sub(row.Timestamp) / time.Minute)
		}
		events = append(events, model.TagEvent{
			Timestamp:       row.Timestamp,
			EmployeeID:      employeeID,
			Location:        row.Kind,
			TagCode:         meetingKindCode(row.Kind),
			Source:          model.SourceMeeting,
			DurationMinutes: duration,
		})
	}

	for _, action := range []struct {
		source model.EventSource
		rows   func(context.Context, string, time.Time) ([]service.ActionRow, error)
	}{
		{model.SourceMail, e.store.MailRows},
		{model.SourceApproval, e.store.ApprovalRows},
		{model.SourceEquipment, e.store.EquipmentRows},
	} {
		rows, err := query(ctx, e.cfg.LookupTimeout, employeeID, day, action.rows)
		if err != nil {
			return nil, fmt.Errorf("%s rows for %s: %w", action.source, employeeID, err)
		}
		for _, row := range rows {
			if row.Timestamp.IsZero() {
				continue
			}
			events = append(events, model.TagEvent{
				Timestamp:  row.Timestamp,
				EmployeeID: employeeID,
				Location:   row.System,
				TagCode:    model.TagO,
				Source:     action.source,
			})
		}
	}

	return events, nil
}

// dedupe collapses consecutive events with the same tag code closer together
// than the window. Different codes inside the window are both retained.
func dedupe(events []model.TagEvent, window time.Duration) []model.TagEvent {
	if len(events) == 0 {
		return events
	}

	result := events[:1]
	for _, curr := range events[1:] {
		prev := result[len(result)-1]
		if curr.TagCode == prev.TagCode && curr.Timestamp.Sub(prev.Timestamp) < window {
			continue
		}
		result = append(result, curr)
	}

	return result
}

func filterWindow(events []model.TagEvent, start, end time.Time) []model.TagEvent {
	filtered := make([]model.TagEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Timestamp.Before(start) && ev.Timestamp.Before(end) {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
