package report

import "time"

// Hours is the trading-hours gate configuration. Clock values are seconds
// since midnight in the venue's reference timezone.
type Hours struct {
	FridayClose int // last open second on Friday (inclusive)
	SundayOpen  int // first open second on Sunday (inclusive)
}

// DefaultHours matches the venue session: Friday closes 20:57:00, Sunday
// reopens 22:02:00.
func DefaultHours() Hours {
	return Hours{
		FridayClose: ClockSeconds(20, 57, 0),
		SundayOpen:  ClockSeconds(22, 2, 0),
	}
}

// ClockSeconds builds a seconds-since-midnight clock value.
func ClockSeconds(hour, min, sec int) int {
	return hour*3600 + min*60 + sec
}

// Open reports whether the market is trading at t. Monday through Thursday
// is continuously open; Saturday is always closed. The gate only suppresses
// notifications, never the underlying data requests.
func (h Hours) Open(t time.Time) bool {
	clock := ClockSeconds(t.Hour(), t.Minute(), t.Second())
	switch t.Weekday() {
	case time.Saturday:
		return false
	case time.Sunday:
		return clock >= h.SundayOpen
	case time.Friday:
		return clock <= h.FridayClose
	default:
		return true
	}
}
