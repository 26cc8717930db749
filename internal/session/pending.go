package session

import (
	"errors"
	"time"

	"github.com/langdon0003/ctrader-monitor/internal/report"
)

// RequestKind tags an outbound data request with the report it feeds.
type RequestKind int

const (
	RequestPnL RequestKind = iota
	RequestDailyDeals
	RequestWeeklyDeals
)

func (k RequestKind) String() string {
	switch k {
	case RequestPnL:
		return "pnl"
	case RequestDailyDeals:
		return "daily_deals"
	case RequestWeeklyDeals:
		return "weekly_deals"
	default:
		return "unknown"
	}
}

// isDealList reports whether the kind rides the deal-list request, whose
// responses are only distinguishable by the pending entry.
func (k RequestKind) isDealList() bool {
	return k == RequestDailyDeals || k == RequestWeeklyDeals
}

// ErrDealRequestOutstanding rejects a second deal-list request while one
// is in flight; overwriting it would misattribute the eventual response.
var ErrDealRequestOutstanding = errors.New("session: a deal-list request is already outstanding")

// PendingRequest correlates an outbound request with the handler for its
// eventual response. Consumed exactly once, or invalidated on disconnect.
type PendingRequest struct {
	Kind     RequestKind
	Token    string
	Window   report.Window
	IssuedAt time.Time
}

// pendingTable tracks the handful of in-flight requests for one session.
// The session loop is single-threaded, so no locking.
type pendingTable struct {
	byToken map[string]PendingRequest
}

func newPendingTable() pendingTable {
	return pendingTable{byToken: map[string]PendingRequest{}}
}

// add registers an in-flight request, enforcing the deal-list mutual
// exclusion guard.
func (t *pendingTable) add(req PendingRequest) error {
	if req.Kind.isDealList() {
		for _, p := range t.byToken {
			if p.Kind.isDealList() {
				return ErrDealRequestOutstanding
			}
		}
	}
	t.byToken[req.Token] = req
	return nil
}

// remove drops an entry without consuming it (send failure path).
func (t *pendingTable) remove(token string) {
	delete(t.byToken, token)
}

// take consumes the entry matching the response's correlation token. When
// the venue does not echo a token, it falls back to the single outstanding
// request whose kind matches the response family.
func (t *pendingTable) take(token string, fallback func(RequestKind) bool) (PendingRequest, bool) {
	if req, ok := t.byToken[token]; ok && token != "" {
		delete(t.byToken, token)
		return req, true
	}
	for tok, req := range t.byToken {
		if fallback(req.Kind) {
			delete(t.byToken, tok)
			return req, true
		}
	}
	return PendingRequest{}, false
}

// clear invalidates every in-flight request (disconnect path).
func (t *pendingTable) clear() {
	t.byToken = map[string]PendingRequest{}
}
