package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextCycleDate(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		months int
		want   time.Time
	}{
		{
			name:   "simple next month",
			anchor: time.Date(2024, time.March, 10, 9, 30, 15, 0, time.UTC),
			months: 1,
			want:   time.Date(2024, time.April, 10, 9, 30, 15, 0, time.UTC),
		},
		{
			name:   "jan 31 clamps to feb 29 in leap year",
			anchor: time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC),
		},
		{
			name:   "jan 31 clamps to feb 28 in non leap year",
			anchor: time.Date(2023, time.January, 31, 12, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2023, time.February, 28, 12, 0, 0, 0, time.UTC),
		},
		{
			name:   "clamping does not stick for later months",
			anchor: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			months: 2,
			want:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "cross year boundary",
			anchor: time.Date(2024, time.November, 15, 6, 45, 0, 0, time.UTC),
			months: 3,
			want:   time.Date(2025, time.February, 15, 6, 45, 0, 0, time.UTC),
		},
		{
			name:   "many months ahead",
			anchor: time.Date(2022, time.May, 31, 23, 59, 59, 0, time.UTC),
			months: 13,
			want:   time.Date(2023, time.June, 30, 23, 59, 59, 0, time.UTC),
		},
		{
			name:   "preserves milliseconds",
			anchor: time.Date(2024, time.March, 10, 9, 30, 15, 250*int(time.Millisecond), time.UTC),
			months: 1,
			want:   time.Date(2024, time.April, 10, 9, 30, 15, 250*int(time.Millisecond), time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextCycleDate(tt.anchor, tt.months)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestNextCycleDate_DayNeverOverflowsTargetMonth(t *testing.T) {
	anchors := []time.Time{
		time.Date(2024, time.January, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.October, 31, 18, 0, 0, 0, time.UTC),
	}
	for _, anchor := range anchors {
		for k := 1; k <= 24; k++ {
			got := NextCycleDate(anchor, k)
			lastDay := time.Date(got.Year(), got.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
			assert.LessOrEqual(t, got.Day(), lastDay, "anchor %v month offset %d", anchor, k)
			// clamping is idempotent for days that fit
			if anchor.Day() <= lastDay {
				assert.Equal(t, anchor.Day(), got.Day(), "anchor %v month offset %d", anchor, k)
			}
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1.0, DaysBetween(a, a.Add(24*time.Hour)))
	assert.Equal(t, 0.5, DaysBetween(a, a.Add(12*time.Hour)))
	assert.Equal(t, -1.0, DaysBetween(a.Add(24*time.Hour), a))
	assert.Equal(t, 0.0, DaysBetween(a, a))
}

func TestCurrentCycleBounds(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		wantPrev time.Time
		wantNext time.Time
	}{
		{
			name:     "first cycle",
			now:      time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC),
			wantPrev: anchor,
			wantNext: time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "second cycle",
			now:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			wantPrev: time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC),
			wantNext: time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "a year later",
			now:      time.Date(2025, time.February, 14, 0, 0, 0, 0, time.UTC),
			wantPrev: time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC),
			wantNext: time.Date(2025, time.February, 28, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := CurrentCycleBounds(anchor, tt.now)
			assert.True(t, prev.Equal(tt.wantPrev), "prev: got %v, want %v", prev, tt.wantPrev)
			assert.True(t, next.Equal(tt.wantNext), "next: got %v, want %v", next, tt.wantNext)

			// the cycle containing now
			assert.False(t, tt.now.Before(prev), "prev must not be after now")
			assert.True(t, tt.now.Before(next), "now must be before next")
		})
	}
}
