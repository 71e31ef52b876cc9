package types

import "time"

const millisPerDay = 24 * 60 * 60 * 1000

// NextCycleDate returns the date exactly `months` calendar months after the
// anchor, with the day-of-month clamped to the last valid day of the target
// month (an anchor of Jan 31 maps month+1 to Feb 28/29). The anchor's clock
// (hour, minute, second, nanosecond) is preserved.
func NextCycleDate(anchor time.Time, months int) time.Time {
	y, m, d := anchor.Date()
	h, min, sec := anchor.Clock()

	newY := y
	newM := time.Month(int(m) + months)
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Last valid day of the target month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, anchor.Location())
	lastDay := firstOfNextMonth.AddDate(0, 0, -1).Day()

	if d > lastDay {
		d = lastDay
	}

	return time.Date(newY, newM, d, h, min, sec, anchor.Nanosecond(), anchor.Location())
}

// DaysBetween returns the signed difference between two instants in
// fractional days, at millisecond resolution.
func DaysBetween(a, b time.Time) float64 {
	return float64(b.Sub(a).Milliseconds()) / float64(millisPerDay)
}

// CurrentCycleBounds walks forward one calendar month at a time from the
// subscription anchor until the computed due date is no longer strictly
// before now, and returns the boundaries of the billing cycle containing now
// (prev <= now < next for any now at or past the anchor).
//
// This is O(cycles since anchor), bounded by the subscription age in months.
func CurrentCycleBounds(anchor, now time.Time) (prev, next time.Time) {
	prev = anchor
	next = NextCycleDate(anchor, 1)
	for i := 2; next.Before(now); i++ {
		prev = next
		next = NextCycleDate(anchor, i)
	}
	return prev, next
}
