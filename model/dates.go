package model

import "time"

// FarFuture is the sentinel due date used when ordering tasks without one.
// It keeps undated tasks comparable and sorted after every real due date.
var FarFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// NextDue computes the next occurrence for a recurrence rule. The base is the
// previous due date when present, otherwise now. Daily advances one day,
// weekly seven, monthly one calendar month (normalized past month ends, so
// Jan 31 + 1 month lands in early March), custom advances EveryDays days
// (defaulting to seven when unset). A nil rule yields nil.
func NextDue(due *time.Time, rec *Recurrence, now time.Time) *time.Time {
	if rec == nil {
		return nil
	}
	base := now
	if due != nil {
		base = *due
	}
	var next time.Time
	switch rec.Kind {
	case RecurDaily:
		next = base.AddDate(0, 0, 1)
	case RecurWeekly:
		next = base.AddDate(0, 0, 7)
	case RecurMonthly:
		next = base.AddDate(0, 1, 0)
	case RecurCustom:
		days := rec.EveryDays
		if days < 1 {
			days = 7
		}
		next = base.AddDate(0, 0, days)
	default:
		return nil
	}
	return &next
}

// DueOrSentinel returns the task's due date, or FarFuture when it has none.
func DueOrSentinel(t Task) time.Time {
	if t.DueAt == nil {
		return FarFuture
	}
	return *t.DueAt
}
