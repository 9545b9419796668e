// Package model defines the core domain models used throughout the application.
package model

import "time"

// TagCode identifies the canonical meaning of a facility event.
type TagCode string

// Canonical tag codes.
const (
	TagG1 TagCode = "G1" // general work area
	TagG2 TagCode = "G2" // locker / gowning area
	TagG3 TagCode = "G3" // meeting room
	TagG4 TagCode = "G4" // education room
	TagN1 TagCode = "N1" // rest area
	TagN2 TagCode = "N2" // amenity (medical, fitness, ...)
	TagT1 TagCode = "T1" // corridor / stairs transit
	TagT2 TagCode = "T2" // entry gate
	TagT3 TagCode = "T3" // exit gate
	TagM1 TagCode = "M1" // dine-in meal
	TagM2 TagCode = "M2" // takeout meal
	TagO  TagCode = "O"  // system-confirmed work action
)

// IsBoundaryGate reports whether the code is an entry or exit reader, the
// only tags that bound the working day. Corridor transit is interior
// movement and never clocks a day in or out.
func (c TagCode) IsBoundaryGate() bool {
	return c == TagT2 || c == TagT3
}

// EventSource names the system a raw event row came from.
type EventSource string

// Raw event sources.
const (
	SourceBadge     EventSource = "badge"
	SourceMeal      EventSource = "meal"
	SourceMeeting   EventSource = "meeting"
	SourceMail      EventSource = "mail"
	SourceApproval  EventSource = "approval"
	SourceEquipment EventSource = "equipment"
)

// TagEvent is a single normalized event for one employee. For one
// employee-day, events are sorted ascending by timestamp and deduplicated:
// no two consecutive events share a tag code within 60 seconds.
type TagEvent struct {
	Timestamp       time.Time
	EmployeeID      string
	Location        string
	TagCode         TagCode
	Source          EventSource
	DurationMinutes int // known duration from the source (e.g. meeting end time), 0 if unknown
}
