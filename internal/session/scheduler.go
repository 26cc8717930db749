package session

import (
	"fmt"
	"time"

	"github.com/langdon0003/ctrader-monitor/internal/config"
)

// deadline is one recurring report trigger. next is the earliest instant
// the deadline is due; advance computes the following occurrence strictly
// after a given time.
type deadline struct {
	kind    RequestKind
	next    time.Time
	advance func(after time.Time) time.Time
}

// Scheduler fires report deadlines off a coarse polling tick. It is
// time-driven and independent of message arrival: a due deadline fires at
// most once per tick, and missed occurrences collapse into a single firing
// rather than a burst.
type Scheduler struct {
	deadlines []*deadline
}

// NewScheduler derives the three deadline classes from the schedule knobs.
// now anchors the first occurrence of each.
func NewScheduler(cfg config.Schedule, now time.Time) (*Scheduler, error) {
	dealsHour, dealsMin, err := config.ParseClock(cfg.DealsTime)
	if err != nil {
		return nil, fmt.Errorf("deals report time: %w", err)
	}
	weeklyHour, weeklyMin, err := config.ParseClock(cfg.WeeklyTime)
	if err != nil {
		return nil, fmt.Errorf("weekly report time: %w", err)
	}

	pnl := &deadline{
		kind:    RequestPnL,
		advance: pnlAdvance(cfg.PnLIntervalHours, cfg.PnLMinute),
	}
	daily := &deadline{
		kind:    RequestDailyDeals,
		advance: dailyAdvance(cfg.DealsIntervalDays, dealsHour, dealsMin),
	}
	weekly := &deadline{
		kind:    RequestWeeklyDeals,
		advance: weekdayAdvance(time.Friday, weeklyHour, weeklyMin),
	}

	s := &Scheduler{deadlines: []*deadline{pnl, daily, weekly}}
	for _, d := range s.deadlines {
		d.next = d.advance(now)
	}
	return s, nil
}

// Due returns the kinds that have come due since the last tick, advancing
// each fired deadline past now. Tolerates ticks coarser or finer than the
// deadline spacing without double-firing.
func (s *Scheduler) Due(now time.Time) []RequestKind {
	var due []RequestKind
	for _, d := range s.deadlines {
		if now.Before(d.next) {
			continue
		}
		due = append(due, d.kind)
		d.next = d.advance(now)
	}
	return due
}

// Next exposes the earliest upcoming deadline, for logging.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, d := range s.deadlines {
		if next.IsZero() || d.next.Before(next) {
			next = d.next
		}
	}
	return next
}

// pnlAdvance fires at minute min of every hour divisible by intervalHours,
// evenly spacing the snapshots across each day.
func pnlAdvance(intervalHours, min int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		day := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, after.Location())
		for {
			for hour := 0; hour < 24; hour += intervalHours {
				candidate := day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
				if candidate.After(after) {
					return candidate
				}
			}
			day = day.AddDate(0, 0, 1)
		}
	}
}

// dailyAdvance fires every intervalDays at hour:min.
func dailyAdvance(intervalDays, hour, min int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		candidate := time.Date(after.Year(), after.Month(), after.Day(), hour, min, 0, 0, after.Location())
		for !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, intervalDays)
		}
		return candidate
	}
}

// weekdayAdvance fires weekly on the given weekday at hour:min.
func weekdayAdvance(weekday time.Weekday, hour, min int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		daysAhead := (int(weekday) - int(after.Weekday()) + 7) % 7
		candidate := time.Date(after.Year(), after.Month(), after.Day(), hour, min, 0, 0, after.Location()).
			AddDate(0, 0, daysAhead)
		for !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	}
}
