package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/langdon0003/ctrader-monitor/internal/openapi"
)

// ClosedDeals filters to deals that actually closed a position: the close
// detail must be present and its balance strictly positive. Everything
// else is excluded regardless of its other fields.
func ClosedDeals(deals []openapi.Deal) []openapi.Deal {
	closed := make([]openapi.Deal, 0, len(deals))
	for _, d := range deals {
		if d.CloseDetail != nil && d.CloseDetail.Balance > 0 {
			closed = append(closed, d)
		}
	}
	return closed
}

// dealFigures is the descaled per-deal arithmetic shared by the daily and
// weekly tables.
type dealFigures struct {
	volume     decimal.Decimal
	swap       decimal.Decimal
	commission decimal.Decimal
	netProfit  decimal.Decimal
	balance    decimal.Decimal
}

func computeFigures(cat *Catalog, d openapi.Deal) dealFigures {
	cd := d.CloseDetail
	swap := Descale(cd.Swap, cd.MoneyDigits)
	commission := Descale(cd.Commission, cd.MoneyDigits)
	gross := Descale(cd.GrossProfit, cd.MoneyDigits)
	return dealFigures{
		volume:     cat.Volume(d.SymbolID, d.Volume, cd.MoneyDigits),
		swap:       swap,
		commission: commission,
		netProfit:  gross.Add(swap).Add(commission),
		balance:    Descale(cd.Balance, cd.MoneyDigits),
	}
}

const dailyRule = "---------- ------- ----- --------- ----- ------ ------ ------- ---------"

// DailyDeals renders the previous day's closed deals keyed by deal id,
// with running totals and the closing balance. The caller filters with
// ClosedDeals first; an empty slice belongs to EmptyDailyDeals.
func DailyDeals(meta Meta, cat *Catalog, deals []openapi.Deal, window Window, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Daily Deal Report %s A/c %d</b>\n", meta.host(), meta.AccountID)
	fmt.Fprintf(&b, "📅 Date: %s\n", window.From.Format("2006-01-02"))
	fmt.Fprintf(&b, "⏰ Report Time: %s\n\n", now.Format(timeLayout))
	b.WriteString("<pre>")
	fmt.Fprintf(&b, "%-10s %-7s %-5s %-9s %-5s %-6s %-6s %-7s %-9s\n",
		"DID", "Symbol", "Side", "Time", "Vol", "Swap", "Comm", "Net", "Bal")
	b.WriteString(dailyRule + "\n")

	totalSwap := decimal.Zero
	totalCommission := decimal.Zero
	totalNet := decimal.Zero
	closingBalance := decimal.Zero
	for _, d := range deals {
		f := computeFigures(cat, d)
		totalSwap = totalSwap.Add(f.swap)
		totalCommission = totalCommission.Add(f.commission)
		totalNet = totalNet.Add(f.netProfit)
		closingBalance = f.balance

		closeTime := time.UnixMilli(d.ExecutionTimestamp).Format("15:04:05")
		fmt.Fprintf(&b, "%-10d %-7s %-5s %-9s %-5s %-6s %-6s %-7s %-9s\n",
			d.DealID, cat.Name(d.SymbolID), openingSide(d.TradeSide), closeTime,
			money(f.volume), money(f.swap), money(f.commission), money(f.netProfit), money(f.balance))
	}

	b.WriteString(dailyRule + "\n")
	fmt.Fprintf(&b, "%-10s %-7s %-5s %-9s %-5s %-6s %-6s %-7s %-9s\n",
		"TOTAL", "", "", "", "", money(totalSwap), money(totalCommission), money(totalNet), money(closingBalance))
	b.WriteString("</pre>")

	b.WriteString("\n💰 <b>SUMMARY</b>\n")
	fmt.Fprintf(&b, "🔄 Total Swap: %s\n", money(totalSwap))
	fmt.Fprintf(&b, "💳 Total Commission: %s\n", money(totalCommission))
	fmt.Fprintf(&b, "💵 Total Net Profit: %s\n", money(totalNet))
	fmt.Fprintf(&b, "💰 Final Balance: %s\n", money(closingBalance))
	fmt.Fprintf(&b, "🔢 Closed Deals: %d", len(deals))
	return b.String()
}

// EmptyDailyDeals is the no-closed-deals variant of the daily report.
func EmptyDailyDeals(meta Meta, window Window, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Daily Deal Report %s A/c %d</b>\n", meta.host(), meta.AccountID)
	fmt.Fprintf(&b, "📅 Date: %s\n", window.From.Format("2006-01-02"))
	fmt.Fprintf(&b, "⏰ Report Time: %s\n\n", now.Format(timeLayout))
	b.WriteString("<pre>✅ No closed deals found for this period.</pre>")
	return b.String()
}

const weeklyRule = "---------- ------- ----- ----- ------ ------ -------"

// WeeklyDeals renders the week's closed deals plus a calendar-day
// breakdown. Deals are labeled by execution day, and per-day counts and
// net PnL are summarized after the table.
func WeeklyDeals(meta Meta, cat *Catalog, deals []openapi.Deal, window Window, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Weekly Deal Report %s A/c %d</b>\n", meta.host(), meta.AccountID)
	fmt.Fprintf(&b, "📅 Week: %s to %s\n",
		window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
	fmt.Fprintf(&b, "⏰ Report Time: %s\n\n", now.Format(timeLayout))
	b.WriteString("<pre>")
	fmt.Fprintf(&b, "%-10s %-7s %-5s %-5s %-6s %-6s %-7s\n",
		"Date", "Symbol", "Side", "Vol", "Swap", "Comm", "Net")
	b.WriteString(weeklyRule + "\n")

	type daySummary struct {
		deals int
		net   decimal.Decimal
	}
	totalSwap := decimal.Zero
	totalCommission := decimal.Zero
	totalNet := decimal.Zero
	days := map[string]*daySummary{}

	for _, d := range deals {
		f := computeFigures(cat, d)
		totalSwap = totalSwap.Add(f.swap)
		totalCommission = totalCommission.Add(f.commission)
		totalNet = totalNet.Add(f.netProfit)

		day := time.UnixMilli(d.ExecutionTimestamp).Format("01-02")
		s, ok := days[day]
		if !ok {
			s = &daySummary{net: decimal.Zero}
			days[day] = s
		}
		s.deals++
		s.net = s.net.Add(f.netProfit)

		fmt.Fprintf(&b, "%-10s %-7s %-5s %-5s %-6s %-6s %-7s\n",
			day, cat.Name(d.SymbolID), openingSide(d.TradeSide),
			money(f.volume), money(f.swap), money(f.commission), money(f.netProfit))
	}

	b.WriteString(weeklyRule + "\n")
	fmt.Fprintf(&b, "%-10s %-7s %-5s %-5s %-6s %-6s %-7s\n",
		"TOTAL", "", "", "", money(totalSwap), money(totalCommission), money(totalNet))
	b.WriteString("</pre>")

	b.WriteString("\n📈 <b>DAILY BREAKDOWN</b>\n")
	dayKeys := make([]string, 0, len(days))
	for day := range days {
		dayKeys = append(dayKeys, day)
	}
	sort.Strings(dayKeys)
	for _, day := range dayKeys {
		s := days[day]
		fmt.Fprintf(&b, "📅 %s: %d deals, Net P&L: %s\n", day, s.deals, money(s.net))
	}

	b.WriteString("\n💰 <b>WEEKLY SUMMARY</b>\n")
	fmt.Fprintf(&b, "🔄 Total Swap: %s\n", money(totalSwap))
	fmt.Fprintf(&b, "💳 Total Commission: %s\n", money(totalCommission))
	fmt.Fprintf(&b, "💵 Total Net Profit: %s\n", money(totalNet))
	fmt.Fprintf(&b, "🔢 Total Closed Deals: %d\n", len(deals))
	fmt.Fprintf(&b, "📊 Trading Days: %d", len(days))
	return b.String()
}

// EmptyWeeklyDeals is the no-closed-deals variant of the weekly report.
func EmptyWeeklyDeals(meta Meta, window Window, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Weekly Deal Report %s A/c %d</b>\n", meta.host(), meta.AccountID)
	fmt.Fprintf(&b, "📅 Week: %s to %s\n",
		window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
	fmt.Fprintf(&b, "⏰ Report Time: %s\n\n", now.Format(timeLayout))
	b.WriteString("<pre>✅ No closed deals found for this week.</pre>")
	return b.String()
}

// openingSide labels the Side column with the position's opening
// direction. A closing deal trades opposite the position it closes, so
// the deal's own side is inverted.
func openingSide(s openapi.TradeSide) string {
	switch s {
	case openapi.SideBuy:
		return "Sell"
	case openapi.SideSell:
		return "Buy"
	default:
		return "n/a"
	}
}
