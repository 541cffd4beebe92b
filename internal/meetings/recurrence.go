package meetings

import "time"

// NextMeetingDate returns when the next occurrence falls, or false for
// non-recurring meetings. Month-based recurrences keep the day of month,
// clamped to the target month's last valid day, so a Jan 31 monthly meeting
// lands on Feb 28 (or 29), not Mar 2.
func NextMeetingDate(date time.Time, recurrence Recurrence) (time.Time, bool) {
	switch recurrence {
	case RecurDaily:
		return date.AddDate(0, 0, 1), true
	case RecurWeekly:
		return date.AddDate(0, 0, 7), true
	case RecurBiweekly:
		return date.AddDate(0, 0, 14), true
	case RecurMonthly:
		return addMonthsClamped(date, 1), true
	case RecurQuarterly:
		return addMonthsClamped(date, 3), true
	}
	return time.Time{}, false
}

func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	hour, minute, sec := date.Clock()

	// Normalize to the first of the target month, then clamp the day.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, date.Nanosecond(), date.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
