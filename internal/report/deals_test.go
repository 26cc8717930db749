package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdon0003/ctrader-monitor/internal/openapi"
)

func closeDetail(gross, swap, commission, balance int64) *openapi.ClosePositionDetail {
	return &openapi.ClosePositionDetail{
		GrossProfit: gross,
		Swap:        swap,
		Commission:  commission,
		Balance:     balance,
		MoneyDigits: 2,
	}
}

func TestClosedDealsPredicate(t *testing.T) {
	deals := []openapi.Deal{
		{DealID: 1, CloseDetail: closeDetail(100, 0, 0, 500000)}, // closed
		{DealID: 2},                                       // opening deal, no close detail
		{DealID: 3, CloseDetail: closeDetail(100, 0, 0, 0)},  // balance not positive
		{DealID: 4, CloseDetail: closeDetail(0, 0, 0, -50)},  // negative balance
		{DealID: 5, CloseDetail: closeDetail(-900, -5, -10, 123456)}, // losing deal still closed
	}

	closed := ClosedDeals(deals)
	require.Len(t, closed, 2)
	assert.Equal(t, int64(1), closed[0].DealID)
	assert.Equal(t, int64(5), closed[1].DealID)
}

func TestDailyDealsAggregation(t *testing.T) {
	meta := Meta{AccountID: 123, HostType: "live"}
	cat := DefaultCatalog()
	now := time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)
	window := DailyWindow(now)

	// XAUUSD has 2 volume digits: raw volume 100000 with moneyDigits 2 is
	// 100000 / 10^(2+2) = 10.00 lots.
	deals := []openapi.Deal{
		{
			DealID:             9001,
			SymbolID:           41,
			TradeSide:          openapi.SideBuy,
			Volume:             100000,
			ExecutionTimestamp: time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC).UnixMilli(),
			CloseDetail:        closeDetail(12345, -250, -700, 1000000),
		},
		{
			DealID:             9002,
			SymbolID:           41,
			TradeSide:          openapi.SideSell,
			Volume:             50000,
			ExecutionTimestamp: time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC).UnixMilli(),
			CloseDetail:        closeDetail(-2345, -100, -300, 997255),
		},
	}

	body := DailyDeals(meta, cat, deals, window, now)

	assert.Contains(t, body, "Daily Deal Report Live A/c 123")
	assert.Contains(t, body, "📅 Date: 2026-08-25")
	assert.Contains(t, body, "9001")
	assert.Contains(t, body, "XAUUSD")
	assert.Contains(t, body, "10.00") // descaled volume, exact
	// Net per deal = gross + swap + commission:
	// 123.45 - 2.50 - 7.00 = 113.95 and -23.45 - 1.00 - 3.00 = -27.45.
	assert.Contains(t, body, "113.95")
	assert.Contains(t, body, "-27.45")
	// Totals: swap -3.50, commission -10.00, net 86.50, final balance 9972.55.
	assert.Contains(t, body, "🔄 Total Swap: -3.50")
	assert.Contains(t, body, "💳 Total Commission: -10.00")
	assert.Contains(t, body, "💵 Total Net Profit: 86.50")
	assert.Contains(t, body, "💰 Final Balance: 9972.55")
	assert.Contains(t, body, "🔢 Closed Deals: 2")
}

func TestDealTableShowsOpeningDirection(t *testing.T) {
	// A closing deal trades opposite the position it closes: a buy-side
	// closing deal belongs to a position that was opened Sell.
	assert.Equal(t, "Sell", openingSide(openapi.SideBuy))
	assert.Equal(t, "Buy", openingSide(openapi.SideSell))
	assert.Equal(t, "n/a", openingSide(openapi.TradeSide(0)))

	meta := Meta{AccountID: 1, HostType: "demo"}
	now := time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)
	deal := openapi.Deal{
		DealID: 42, SymbolID: 41, TradeSide: openapi.SideBuy, Volume: 10000,
		ExecutionTimestamp: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC).UnixMilli(),
		CloseDetail:        closeDetail(100, 0, 0, 500000),
	}
	body := DailyDeals(meta, DefaultCatalog(), []openapi.Deal{deal}, DailyWindow(now), now)
	assert.Contains(t, body, "Sell")
	assert.NotContains(t, body, "Buy")
}

func TestEmptyDailyDeals(t *testing.T) {
	meta := Meta{AccountID: 7, HostType: "demo"}
	now := time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)
	body := EmptyDailyDeals(meta, DailyWindow(now), now)

	assert.Contains(t, body, "Daily Deal Report Demo A/c 7")
	assert.Contains(t, body, "No closed deals found for this period.")
}

func TestWeeklyDealsDailyBreakdown(t *testing.T) {
	meta := Meta{AccountID: 123, HostType: "live"}
	cat := DefaultCatalog()
	now := time.Date(2026, 8, 21, 21, 15, 0, 0, time.UTC)
	window := WeeklyWindow(now)

	deals := []openapi.Deal{
		{
			DealID: 1, SymbolID: 41, TradeSide: openapi.SideBuy, Volume: 10000,
			ExecutionTimestamp: time.Date(2026, 8, 17, 10, 0, 0, 0, time.UTC).UnixMilli(),
			CloseDetail:        closeDetail(5000, 0, -100, 2000000),
		},
		{
			DealID: 2, SymbolID: 41, TradeSide: openapi.SideSell, Volume: 10000,
			ExecutionTimestamp: time.Date(2026, 8, 17, 16, 0, 0, 0, time.UTC).UnixMilli(),
			CloseDetail:        closeDetail(-1000, 0, -100, 1998900),
		},
		{
			DealID: 3, SymbolID: 10026, TradeSide: openapi.SideBuy, Volume: 300,
			ExecutionTimestamp: time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC).UnixMilli(),
			CloseDetail:        closeDetail(2500, -50, -50, 2001300),
		},
	}

	body := WeeklyDeals(meta, cat, deals, window, now)

	assert.Contains(t, body, "Weekly Deal Report Live A/c 123")
	assert.Contains(t, body, "📅 Week: 2026-08-16 to 2026-08-21")
	assert.Contains(t, body, "DAILY BREAKDOWN")
	// Two deals on 08-17 netting 49.00 - 11.00 = 38.00, one on 08-19 netting 24.00.
	assert.Contains(t, body, "📅 08-17: 2 deals, Net P&L: 38.00")
	assert.Contains(t, body, "📅 08-19: 1 deals, Net P&L: 24.00")
	assert.Contains(t, body, "🔢 Total Closed Deals: 3")
	assert.Contains(t, body, "📊 Trading Days: 2")
	// Breakdown days are sorted even though deal order interleaves.
	assert.Less(t, strings.Index(body, "📅 08-17"), strings.Index(body, "📅 08-19"))
}

func TestEmptyWeeklyDeals(t *testing.T) {
	meta := Meta{AccountID: 123, HostType: "live"}
	now := time.Date(2026, 8, 21, 21, 15, 0, 0, time.UTC)
	body := EmptyWeeklyDeals(meta, WeeklyWindow(now), now)

	assert.Contains(t, body, "Weekly Deal Report Live A/c 123")
	assert.Contains(t, body, "No closed deals found for this week.")
}
