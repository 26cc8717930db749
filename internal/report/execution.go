package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/langdon0003/ctrader-monitor/internal/openapi"
)

// Execution renders the immediate single-event notification for a filled
// order. The body varies with the position status: opened events carry the
// trade side, closed events carry the close-detail breakdown.
func Execution(meta Meta, cat *Catalog, ev openapi.ExecutionEvent, now time.Time) string {
	deal := ev.Deal
	status := ev.Position.Status

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 <b>%s</b>\n", statusTitle(status))
	b.WriteString(meta.accountLine())
	fmt.Fprintf(&b, "📊 PID: %d\n", deal.PositionID)
	fmt.Fprintf(&b, "💰 Symbol: %s\n", cat.Name(deal.SymbolID))
	if status == openapi.PositionOpened {
		fmt.Fprintf(&b, "📈 Trade Side: %s\n", deal.TradeSide)
	}
	fmt.Fprintf(&b, "💵 Volume: %s lot\n", money(cat.Volume(deal.SymbolID, deal.Volume, deal.MoneyDigits)))
	if deal.ExecutionPrice != 0 {
		fmt.Fprintf(&b, "💰 Execution Price: %v\n", deal.ExecutionPrice)
	}
	if cd := deal.CloseDetail; cd != nil &&
		(status == openapi.PositionClosedAuto || status == openapi.PositionClosedManual) {
		fmt.Fprintf(&b, "💰 Entry Price: %v\n", cd.EntryPrice)
		fmt.Fprintf(&b, "💰 GrossProfit: %s\n", money(Descale(cd.GrossProfit, cd.MoneyDigits)))
		fmt.Fprintf(&b, "💰 Swap: %s\n", money(Descale(cd.Swap, cd.MoneyDigits)))
		fmt.Fprintf(&b, "💰 Commission: %s\n", money(Descale(cd.Commission, cd.MoneyDigits)))
		fmt.Fprintf(&b, "💰 Balance: %s\n", money(Descale(cd.Balance, cd.MoneyDigits)))
	}
	fmt.Fprintf(&b, "⏰ Time: %s", now.Format(timeLayout))
	return b.String()
}

func statusTitle(s openapi.PositionStatus) string {
	switch s {
	case openapi.PositionOpened:
		return "NEW POSITION OPEN"
	case openapi.PositionClosedAuto:
		return "POSITION CLOSED AUTO"
	case openapi.PositionClosedManual:
		return "POSITION CLOSED MANUAL"
	default:
		return "n/a"
	}
}
