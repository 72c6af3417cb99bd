package types

import "time"

// ToUTCDate normalizes a timestamp to midnight UTC of its calendar day.
// All billing period math is date-based; time-of-day never matters.
func ToUTCDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts the calendar days covered by [start, end], both ends
// included. A single-day range counts as 1. Returns 0 when end precedes start.
func DaysInclusive(start, end time.Time) int {
	startDay := ToUTCDate(start)
	endDay := ToUTCDate(end)
	if endDay.Before(startDay) {
		return 0
	}
	return int(endDay.Sub(startDay)/(24*time.Hour)) + 1
}

// MaxDate returns the later of two dates
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of two dates
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
