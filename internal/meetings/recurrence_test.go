package meetings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextMeetingDateFixedOffsets(t *testing.T) {
	base := day(2026, 3, 10)

	next, ok := NextMeetingDate(base, RecurDaily)
	require.True(t, ok)
	require.Equal(t, day(2026, 3, 11), next)

	next, ok = NextMeetingDate(base, RecurWeekly)
	require.True(t, ok)
	require.Equal(t, day(2026, 3, 17), next)

	next, ok = NextMeetingDate(base, RecurBiweekly)
	require.True(t, ok)
	require.Equal(t, day(2026, 3, 24), next)
}

func TestNextMeetingDateMonthly(t *testing.T) {
	next, ok := NextMeetingDate(day(2026, 3, 15), RecurMonthly)
	require.True(t, ok)
	require.Equal(t, day(2026, 4, 15), next)

	// Jan 31 clamps to the end of February, not Mar 2.
	next, ok = NextMeetingDate(day(2026, 1, 31), RecurMonthly)
	require.True(t, ok)
	require.Equal(t, day(2026, 2, 28), next)

	// Leap year keeps the 29th.
	next, ok = NextMeetingDate(day(2028, 1, 31), RecurMonthly)
	require.True(t, ok)
	require.Equal(t, day(2028, 2, 29), next)

	// Year rollover.
	next, ok = NextMeetingDate(day(2026, 12, 31), RecurMonthly)
	require.True(t, ok)
	require.Equal(t, day(2027, 1, 31), next)
}

func TestNextMeetingDateQuarterly(t *testing.T) {
	next, ok := NextMeetingDate(day(2026, 1, 15), RecurQuarterly)
	require.True(t, ok)
	require.Equal(t, day(2026, 4, 15), next)

	// Nov 30 + 3 months clamps to the end of February.
	next, ok = NextMeetingDate(day(2026, 11, 30), RecurQuarterly)
	require.True(t, ok)
	require.Equal(t, day(2027, 2, 28), next)

	next, ok = NextMeetingDate(day(2027, 11, 30), RecurQuarterly)
	require.True(t, ok)
	require.Equal(t, day(2028, 2, 29), next)
}

func TestNextMeetingDateNone(t *testing.T) {
	_, ok := NextMeetingDate(day(2026, 3, 10), RecurNone)
	require.False(t, ok)
}

func TestNextMeetingDateKeepsClock(t *testing.T) {
	base := time.Date(2026, 1, 31, 14, 30, 0, 0, time.UTC)
	next, ok := NextMeetingDate(base, RecurMonthly)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 2, 28, 14, 30, 0, 0, time.UTC), next)
}
