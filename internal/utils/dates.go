package utils

import "time"

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalendarDaysBetween returns the whole calendar days from the date of `from`
// to the date of `to`, ignoring time-of-day. Negative when `to` is earlier.
func CalendarDaysBetween(from, to time.Time) int32 {
	return int32(StartOfDay(to).Sub(StartOfDay(from)).Hours() / 24)
}

// DaysLate returns how many calendar days past the due date a return happened.
// Returns 0 when the return is on time, or late within the same calendar day.
func DaysLate(due, returned time.Time) int32 {
	if !returned.After(due) {
		return 0
	}
	days := CalendarDaysBetween(due, returned)
	if days < 0 {
		return 0
	}
	return days
}
