package report

import "time"

// weeklyBoundaryHour is the venue's week boundary clock: the trading week
// runs Sunday 21:00 to Friday 21:00.
const weeklyBoundaryHour = 21

// Window is the half-open interval [From, To) a batch report covers.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window. The end boundary is
// excluded.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// FromMillis returns the inclusive start in unix milliseconds.
func (w Window) FromMillis() int64 { return w.From.UnixMilli() }

// ToMillis returns the exclusive end in unix milliseconds.
func (w Window) ToMillis() int64 { return w.To.UnixMilli() }

// DailyWindow covers the calendar day before now: [yesterday 00:00,
// today 00:00).
func DailyWindow(now time.Time) Window {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{From: midnight.AddDate(0, 0, -1), To: midnight}
}

// WeeklyWindow covers the trading week ending at the most recent Friday
// 21:00 (possibly today), starting the Sunday 21:00 five days earlier.
func WeeklyWindow(now time.Time) Window {
	daysBack := (int(now.Weekday()) - int(time.Friday) + 7) % 7
	friday := now.AddDate(0, 0, -daysBack)
	end := time.Date(friday.Year(), friday.Month(), friday.Day(),
		weeklyBoundaryHour, 0, 0, 0, now.Location())
	return Window{From: end.AddDate(0, 0, -5), To: end}
}
