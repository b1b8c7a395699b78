package cron

import (
	"time"

	"github.com/robfig/cron/v3"
)

// At returns a one-shot trigger for an absolute time. Once that time has
// passed (fired or not), the trigger reports no further runs and the cron
// engine drops its entry.
func At(t time.Time) Trigger { return onceTrigger{at: t} }

type onceTrigger struct{ at time.Time }

func (o onceTrigger) Next(t time.Time) time.Time {
	if o.at.After(t) {
		return o.at
	}
	return time.Time{}
}

// Daily returns a trigger firing every day at hour:minute.
func Daily(hour, minute int) Trigger { return dailyTrigger{hour: hour, minute: minute} }

type dailyTrigger struct{ hour, minute int }

func (d dailyTrigger) Next(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), d.hour, d.minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Every returns a fixed-interval trigger (robfig's constant-delay
// schedule; intervals under a second round up).
func Every(d time.Duration) Trigger { return cron.Every(d) }
