package report

import (
	"testing"
	"time"
)

func TestHoursBoundaries(t *testing.T) {
	h := DefaultHours()

	// 2026-08-21 is a Friday, 2026-08-23 a Sunday, 2026-08-22 a Saturday.
	cases := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"friday before close", time.Date(2026, 8, 21, 20, 56, 0, 0, time.UTC), true},
		{"friday at close", time.Date(2026, 8, 21, 20, 57, 0, 0, time.UTC), true},
		{"friday after close", time.Date(2026, 8, 21, 20, 58, 0, 0, time.UTC), false},
		{"saturday morning", time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC), false},
		{"saturday night", time.Date(2026, 8, 22, 23, 59, 59, 0, time.UTC), false},
		{"sunday before open", time.Date(2026, 8, 23, 22, 1, 0, 0, time.UTC), false},
		{"sunday at open", time.Date(2026, 8, 23, 22, 2, 0, 0, time.UTC), true},
		{"sunday after open", time.Date(2026, 8, 23, 22, 3, 0, 0, time.UTC), true},
		{"monday midnight", time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), true},
		{"wednesday midday", time.Date(2026, 8, 26, 12, 30, 0, 0, time.UTC), true},
		{"thursday late", time.Date(2026, 8, 27, 23, 59, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.Open(tc.at); got != tc.open {
				t.Fatalf("Open(%s %s) = %v, want %v", tc.at.Weekday(), tc.at.Format("15:04:05"), got, tc.open)
			}
		})
	}
}
