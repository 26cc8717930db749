package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/langdon0003/ctrader-monitor/internal/openapi"
)

// PnL renders the open-position snapshot: one row per position plus gross
// and net totals. Every PnL field shares the response-level digit count.
func PnL(meta Meta, positions []openapi.PositionPnL, moneyDigits uint32, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Open Position Report %s A/c %d</b>\n", meta.host(), meta.AccountID)
	fmt.Fprintf(&b, "⏰ Time: %s\n\n", now.Format(timeLayout))
	b.WriteString("<pre>")
	fmt.Fprintf(&b, "%-10s %-9s %-9s\n", "PID", "Gross", "Net")
	fmt.Fprintf(&b, "%s %s %s\n", strings.Repeat("-", 10), strings.Repeat("-", 9), strings.Repeat("-", 9))

	totalGross := decimal.Zero
	totalNet := decimal.Zero
	for _, pos := range positions {
		gross := Descale(pos.GrossPnL, moneyDigits)
		net := Descale(pos.NetPnL, moneyDigits)
		totalGross = totalGross.Add(gross)
		totalNet = totalNet.Add(net)
		fmt.Fprintf(&b, "%-10d %-9s %-9s\n", pos.PositionID, money(gross), money(net))
	}

	fmt.Fprintf(&b, "%s %s %s\n", strings.Repeat("-", 10), strings.Repeat("-", 9), strings.Repeat("-", 9))
	fmt.Fprintf(&b, "%-10s %-9s %-9s\n", "TOTAL", money(totalGross), money(totalNet))
	b.WriteString("</pre>")

	b.WriteString("\n💰 <b>SUMMARY</b>\n")
	fmt.Fprintf(&b, "📈 Total Gross: %s\n", money(totalGross))
	fmt.Fprintf(&b, "📉 Total Net: %s\n", money(totalNet))
	fmt.Fprintf(&b, "🔢 Open Positions: %d", len(positions))
	return b.String()
}

// EmptyPnL is the fixed no-open-positions variant.
func EmptyPnL(meta Meta, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Open Position Report %s A/c %d</b>\n", meta.host(), meta.AccountID)
	fmt.Fprintf(&b, "⏰ Time: %s\n\n", now.Format(timeLayout))
	b.WriteString("<pre>🎯 No Open Position</pre>")
	return b.String()
}
