package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdon0003/ctrader-monitor/internal/config"
)

func testSchedule() config.Schedule {
	return config.Schedule{
		PnLIntervalHours:  4,
		PnLMinute:         0,
		DealsIntervalDays: 1,
		DealsTime:         "00:05",
		WeeklyTime:        "21:00",
		TickInterval:      time.Minute,
	}
}

func dueKinds(s *Scheduler, now time.Time) map[RequestKind]bool {
	out := map[RequestKind]bool{}
	for _, k := range s.Due(now) {
		out[k] = true
	}
	return out
}

func TestSchedulerNothingDueBeforeFirstDeadline(t *testing.T) {
	// Wednesday 10:00. Next pnl snapshot is 12:00.
	anchor := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s, err := NewScheduler(testSchedule(), anchor)
	require.NoError(t, err)

	assert.Empty(t, s.Due(anchor.Add(time.Minute)))
	assert.Empty(t, s.Due(anchor.Add(119*time.Minute)))
}

func TestSchedulerFiresOnceThenAdvances(t *testing.T) {
	anchor := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s, err := NewScheduler(testSchedule(), anchor)
	require.NoError(t, err)

	noon := time.Date(2026, 8, 26, 12, 0, 30, 0, time.UTC)
	due := dueKinds(s, noon)
	assert.True(t, due[RequestPnL])
	assert.False(t, due[RequestDailyDeals])
	assert.False(t, due[RequestWeeklyDeals])

	// The very next tick does not re-fire.
	assert.Empty(t, s.Due(noon.Add(time.Minute)))

	// The following occurrence is 16:00.
	assert.Empty(t, s.Due(time.Date(2026, 8, 26, 15, 59, 0, 0, time.UTC)))
	assert.True(t, dueKinds(s, time.Date(2026, 8, 26, 16, 0, 10, 0, time.UTC))[RequestPnL])
}

func TestSchedulerMissedOccurrencesCollapse(t *testing.T) {
	anchor := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s, err := NewScheduler(testSchedule(), anchor)
	require.NoError(t, err)

	// A long stall skipped the 12:00 and 16:00 snapshots. One firing, not
	// a burst, and the next occurrence is 20:00.
	late := time.Date(2026, 8, 26, 17, 30, 0, 0, time.UTC)
	kinds := s.Due(late)
	pnl := 0
	for _, k := range kinds {
		if k == RequestPnL {
			pnl++
		}
	}
	assert.Equal(t, 1, pnl)

	assert.Empty(t, s.Due(time.Date(2026, 8, 26, 19, 59, 0, 0, time.UTC)))
	assert.True(t, dueKinds(s, time.Date(2026, 8, 26, 20, 0, 0, 0, time.UTC))[RequestPnL])
}

func TestSchedulerDailyDeadline(t *testing.T) {
	// Anchored Wednesday 10:00: the daily report fires Thursday 00:05.
	anchor := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s, err := NewScheduler(testSchedule(), anchor)
	require.NoError(t, err)

	assert.False(t, dueKinds(s, time.Date(2026, 8, 27, 0, 4, 0, 0, time.UTC))[RequestDailyDeals])
	assert.True(t, dueKinds(s, time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC))[RequestDailyDeals])
	assert.True(t, dueKinds(s, time.Date(2026, 8, 28, 0, 5, 0, 0, time.UTC))[RequestDailyDeals])
}

func TestSchedulerDailyIntervalSpacing(t *testing.T) {
	cfg := testSchedule()
	cfg.DealsIntervalDays = 3
	anchor := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s, err := NewScheduler(cfg, anchor)
	require.NoError(t, err)

	// Steps in 3-day hops from the anchor day at 00:05: the first
	// occurrence after Wednesday 10:00 is Saturday 00:05.
	first := time.Date(2026, 8, 29, 0, 5, 0, 0, time.UTC)
	assert.False(t, dueKinds(s, first.AddDate(0, 0, -2))[RequestDailyDeals])
	assert.True(t, dueKinds(s, first)[RequestDailyDeals])
	assert.False(t, dueKinds(s, first.AddDate(0, 0, 1))[RequestDailyDeals])
	assert.True(t, dueKinds(s, first.AddDate(0, 0, 3))[RequestDailyDeals])
}

func TestSchedulerWeeklyFiresFridayEvening(t *testing.T) {
	// Anchored Wednesday: the weekly report fires that Friday at 21:00.
	anchor := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s, err := NewScheduler(testSchedule(), anchor)
	require.NoError(t, err)

	friday := time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC)
	assert.False(t, dueKinds(s, friday.Add(-time.Minute))[RequestWeeklyDeals])
	assert.True(t, dueKinds(s, friday)[RequestWeeklyDeals])
	assert.False(t, dueKinds(s, friday.Add(time.Minute))[RequestWeeklyDeals])
	assert.True(t, dueKinds(s, friday.AddDate(0, 0, 7))[RequestWeeklyDeals])
}

func TestSchedulerWeeklyAnchoredAfterFriday(t *testing.T) {
	// Anchored Friday 22:00, past this week's boundary: the first weekly
	// firing is next Friday.
	anchor := time.Date(2026, 8, 28, 22, 0, 0, 0, time.UTC)
	s, err := NewScheduler(testSchedule(), anchor)
	require.NoError(t, err)

	assert.False(t, dueKinds(s, anchor.AddDate(0, 0, 6))[RequestWeeklyDeals])
	assert.True(t, dueKinds(s, time.Date(2026, 9, 4, 21, 0, 0, 0, time.UTC))[RequestWeeklyDeals])
}

func TestSchedulerRejectsBadClock(t *testing.T) {
	cfg := testSchedule()
	cfg.WeeklyTime = "21h00"
	_, err := NewScheduler(cfg, time.Now())
	assert.Error(t, err)
}

func TestSchedulerNext(t *testing.T) {
	anchor := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s, err := NewScheduler(testSchedule(), anchor)
	require.NoError(t, err)

	// The nearest deadline is the 12:00 pnl snapshot.
	assert.Equal(t, time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC), s.Next())
}
