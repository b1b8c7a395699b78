// Package schedule computes the daily forwarding timetable: given the
// day's ordered items, each item gets a fixed-interval slot starting at a
// configured hour, rolling past midnight into the next calendar day.
package schedule

import "time"

// Mode selects how slots are expressed.
type Mode int

const (
	// OneShot binds each slot to one absolute timestamp; slots for the
	// current day only, superseded by the next rebuild.
	OneShot Mode = iota

	// Recurring binds each slot to a weekly weekday+hour+minute spec.
	Recurring
)

// FireSpec is either a one-shot absolute fire time or a weekly recurrence.
type FireSpec struct {
	// One-shot fields.
	At time.Time

	// Recurring fields.
	Weekday time.Weekday
	Hour    int
	Minute  int

	Recurring bool
}

// Next returns the spec's first fire time strictly after now, or the zero
// time when none remains (a one-shot spec already in the past).
func (s FireSpec) Next(now time.Time) time.Time {
	if !s.Recurring {
		if s.At.After(now) {
			return s.At
		}
		return time.Time{}
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())
	for next.Weekday() != s.Weekday || !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Slot binds one item to its fire spec.
type Slot struct {
	Item string
	Spec FireSpec
}

// Assign lays the items out at startHour, startHour+interval, ... on the
// calendar day of ref. An hour reaching 24 rolls to 00:00 of the next day
// (never 24:00 of the same day). Slots keep the items' order.
func Assign(items []string, startHour, intervalHours int, ref time.Time, mode Mode) []Slot {
	slots := make([]Slot, 0, len(items))
	for i, item := range items {
		hour := startHour + i*intervalHours
		day := ref
		for hour >= 24 {
			hour -= 24
			day = day.AddDate(0, 0, 1)
		}

		at := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, ref.Location())

		spec := FireSpec{At: at}
		if mode == Recurring {
			spec = FireSpec{
				Weekday:   at.Weekday(),
				Hour:      hour,
				Minute:    0,
				Recurring: true,
			}
		}
		slots = append(slots, Slot{Item: item, Spec: spec})
	}
	return slots
}
