// Package session runs the per-account client: the connection and
// authentication state machine, the report scheduler, and the dispatcher
// that routes inbound venue messages to report formatting and delivery.
//
// One Session is one single-threaded event loop. Handlers never run
// concurrently within a session, and sessions share no mutable state with
// each other.
package session

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/langdon0003/ctrader-monitor/internal/config"
	"github.com/langdon0003/ctrader-monitor/internal/notify"
	"github.com/langdon0003/ctrader-monitor/internal/observ"
	"github.com/langdon0003/ctrader-monitor/internal/openapi"
	"github.com/langdon0003/ctrader-monitor/internal/report"
	"github.com/langdon0003/ctrader-monitor/internal/transport"
)

// dealListMaxRows caps a single deal-list response.
const dealListMaxRows = 1000

// Session is the full connection + authentication + scheduling context for
// one monitored account.
type Session struct {
	cfg       config.Config
	accountID int64
	meta      report.Meta
	dial      transport.Dialer
	sink      notify.Sink
	catalog   *report.Catalog
	hours     report.Hours
	sched     *Scheduler
	log       *zap.Logger
	now       func() time.Time

	state    State
	client   transport.Client
	attempts int
	pending  pendingTable
}

// New builds a session for one account. dial is invoked once per
// connection attempt so the transport handle is replaced wholesale on
// reconnect.
func New(cfg config.Config, accountID int64, dial transport.Dialer, sink notify.Sink, catalog *report.Catalog, log *zap.Logger) (*Session, error) {
	now := time.Now
	sched, err := NewScheduler(cfg.Schedule, now())
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:       cfg,
		accountID: accountID,
		meta:      report.Meta{AccountID: accountID, HostType: cfg.HostType},
		dial:      dial,
		sink:      sink,
		catalog:   catalog,
		hours:     report.DefaultHours(),
		sched:     sched,
		log:       log.With(zap.Int64("account", accountID), zap.String("host", cfg.HostType)),
		now:       now,
		state:     StateDisconnected,
		pending:   newPendingTable(),
	}, nil
}

// State returns the current lifecycle state. Only the session loop
// mutates it.
func (s *Session) State() State { return s.state }

// setState transitions the lifecycle state and publishes it as a gauge.
func (s *Session) setState(st State) {
	s.state = st
	observ.SetGauge(observ.SessionState, float64(st), s.labels())
}

// Run drives the event loop until ctx is cancelled. The scheduler tick
// stops before the transport is torn down, and no in-flight response is
// awaited during shutdown.
func (s *Session) Run(ctx context.Context) error {
	tick := time.NewTicker(s.cfg.Schedule.TickInterval)
	defer tick.Stop()

	// Fires immediately for the initial connect, then on each reconnect
	// delay.
	dialTimer := time.NewTimer(0)
	defer dialTimer.Stop()

	var events <-chan transport.Event
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil

		case <-dialTimer.C:
			if ch, ok := s.connect(ctx); ok {
				events = ch
			} else {
				dialTimer.Reset(s.reconnectDelay())
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Kind == transport.EventDisconnected {
				events = nil
				s.onDisconnected(ctx, ev.Reason)
				dialTimer.Reset(s.reconnectDelay())
				continue
			}
			s.handleEvent(ctx, ev)

		case now := <-tick.C:
			s.onTick(now)
		}
	}
}

// connect dials a fresh transport handle. Dial failures count as
// reconnect attempts but are not user-notified; only an established
// connection's loss is.
func (s *Session) connect(ctx context.Context) (<-chan transport.Event, bool) {
	s.setState(StateConnecting)
	client := s.dial()
	if err := client.Connect(ctx); err != nil {
		s.attempts++
		observ.IncCounter(observ.ReconnectAttemptsTotal, s.labels())
		s.setState(StateDisconnected)
		s.log.Warn("dial failed",
			zap.Error(err),
			zap.Int("attempts", s.attempts))
		return nil, false
	}
	s.client = client
	s.log.Info("transport connected")
	return client.Events(), true
}

// onDisconnected handles the transport-disconnected signal from any
// non-terminal state.
func (s *Session) onDisconnected(ctx context.Context, reason string) {
	s.setState(StateDisconnected)
	s.pending.clear()
	s.client = nil
	s.attempts++
	observ.IncCounter(observ.ReconnectAttemptsTotal, s.labels())
	s.log.Warn("connection lost",
		zap.String("reason", reason),
		zap.Int("attempts", s.attempts))

	if s.attempts <= s.cfg.Reconnect.MaxAttempts {
		s.deliver(ctx, report.ConnectionLost(s.meta, reason, s.now()))
	}
}

// reconnectDelay backs off exponentially up to the ceiling, then settles
// on the quiet interval. The session never stops retrying.
func (s *Session) reconnectDelay() time.Duration {
	if s.attempts > s.cfg.Reconnect.MaxAttempts {
		return s.cfg.Reconnect.QuietInterval
	}
	delay := s.cfg.Reconnect.InitialDelay
	for i := 1; i < s.attempts; i++ {
		delay *= 2
		if delay >= s.cfg.Reconnect.MaxDelay {
			return s.cfg.Reconnect.MaxDelay
		}
	}
	return delay
}

// handleEvent processes one inbound transport event.
func (s *Session) handleEvent(ctx context.Context, ev transport.Event) {
	switch ev.Kind {
	case transport.EventConnected:
		s.onConnected()
	case transport.EventMessage:
		s.dispatch(ctx, ev.Msg)
	}
}

// onConnected starts the application-level handshake.
func (s *Session) onConnected() {
	s.setState(StateAppAuthenticating)
	s.sendRequest(openapi.KindApplicationAuthReq, "", openapi.ApplicationAuthReq{
		ClientID:     s.cfg.Credentials.ClientID,
		ClientSecret: s.cfg.Credentials.ClientSecret,
	})
}

// dispatch routes one inbound message by payload kind.
func (s *Session) dispatch(ctx context.Context, msg openapi.Envelope) {
	observ.IncCounter(observ.MessagesReceivedTotal, s.labels())

	switch msg.Kind {
	case openapi.KindHeartbeat:
		s.log.Debug("heartbeat received")

	case openapi.KindSubscribeSpotsRes, openapi.KindAccountLogoutRes:
		// Acknowledgements with no follow-up.

	case openapi.KindApplicationAuthRes:
		s.onAppAuthorized()

	case openapi.KindAccountAuthRes:
		s.onAccountAuthorized(ctx, msg)

	case openapi.KindAccountListRes:
		s.onAccountList(msg)

	case openapi.KindPositionPnLRes:
		s.onPnLResponse(ctx, msg)

	case openapi.KindDealListRes:
		s.onDealListResponse(ctx, msg)

	case openapi.KindExecutionEvent:
		s.onExecutionEvent(ctx, msg)

	default:
		s.log.Info("unhandled message", zap.Stringer("kind", msg.Kind))
	}
}

func (s *Session) onAppAuthorized() {
	s.log.Info("application authorized")
	if s.accountID == 0 {
		// Session not bound to an account: list what the token can reach
		// instead of authenticating.
		s.setState(StateReady)
		s.sendRequest(openapi.KindAccountListReq, "", openapi.AccountListReq{
			AccessToken: s.cfg.Credentials.AccessToken,
		})
		return
	}
	s.setState(StateAccountAuthenticating)
	s.sendRequest(openapi.KindAccountAuthReq, "", openapi.AccountAuthReq{
		AccountID:   s.accountID,
		AccessToken: s.cfg.Credentials.AccessToken,
	})
}

func (s *Session) onAccountAuthorized(ctx context.Context, msg openapi.Envelope) {
	var res openapi.AccountAuthRes
	if err := msg.Decode(&res); err != nil {
		s.log.Error("bad account auth response", zap.Error(err))
		return
	}
	s.setState(StateReady)
	s.log.Info("account authorized", zap.Int64("authorized_account", res.AccountID))

	if s.attempts > 0 {
		s.deliver(ctx, report.Reconnected(s.meta, s.attempts, s.now()))
		s.attempts = 0
	}
}

func (s *Session) onAccountList(msg openapi.Envelope) {
	var res openapi.AccountListRes
	if err := msg.Decode(&res); err != nil {
		s.log.Error("bad account list response", zap.Error(err))
		return
	}
	for _, acct := range res.Accounts {
		s.log.Info("account reachable",
			zap.Int64("reachable_account", acct.AccountID),
			zap.Bool("live", acct.IsLive))
	}
}

func (s *Session) onPnLResponse(ctx context.Context, msg openapi.Envelope) {
	var res openapi.PositionPnLRes
	if err := msg.Decode(&res); err != nil {
		s.log.Error("bad pnl response", zap.Error(err))
		return
	}
	if _, ok := s.pending.take(msg.ClientMsgID, func(k RequestKind) bool { return k == RequestPnL }); !ok {
		s.log.Warn("unmatched pnl response", zap.String("client_msg_id", msg.ClientMsgID))
		return
	}
	s.log.Info("pnl snapshot received", zap.Int("positions", len(res.Positions)))

	now := s.now()
	if !s.hours.Open(now) {
		s.log.Info("outside trading hours, pnl report suppressed")
		return
	}
	if len(res.Positions) == 0 {
		s.deliver(ctx, report.EmptyPnL(s.meta, now))
		return
	}
	s.deliver(ctx, report.PnL(s.meta, res.Positions, res.MoneyDigits, now))
}

func (s *Session) onDealListResponse(ctx context.Context, msg openapi.Envelope) {
	var res openapi.DealListRes
	if err := msg.Decode(&res); err != nil {
		s.log.Error("bad deal list response", zap.Error(err))
		return
	}
	req, ok := s.pending.take(msg.ClientMsgID, RequestKind.isDealList)
	if !ok {
		s.log.Warn("unmatched deal list response", zap.String("client_msg_id", msg.ClientMsgID))
		return
	}
	closed := report.ClosedDeals(res.Deals)
	s.log.Info("deal list received",
		zap.Stringer("report", req.Kind),
		zap.Int("deals", len(res.Deals)),
		zap.Int("closed", len(closed)))

	now := s.now()
	switch req.Kind {
	case RequestWeeklyDeals:
		// The weekly report always goes out once the window closes.
		if len(closed) == 0 {
			s.deliver(ctx, report.EmptyWeeklyDeals(s.meta, req.Window, now))
			return
		}
		s.deliver(ctx, report.WeeklyDeals(s.meta, s.catalog, closed, req.Window, now))

	case RequestDailyDeals:
		if !s.hours.Open(now) {
			s.log.Info("outside trading hours, daily deal report suppressed")
			return
		}
		if len(closed) == 0 {
			s.deliver(ctx, report.EmptyDailyDeals(s.meta, req.Window, now))
			return
		}
		s.deliver(ctx, report.DailyDeals(s.meta, s.catalog, closed, req.Window, now))
	}
}

func (s *Session) onExecutionEvent(ctx context.Context, msg openapi.Envelope) {
	var ev openapi.ExecutionEvent
	if err := msg.Decode(&ev); err != nil {
		s.log.Error("bad execution event", zap.Error(err))
		return
	}
	if ev.ExecutionType != openapi.ExecutionOrderFilled {
		return
	}
	s.log.Info("order filled",
		zap.Int64("position", ev.Position.PositionID),
		zap.Int32("status", int32(ev.Position.Status)))
	// Low-latency path: no window aggregation, no trading-hours gate.
	s.deliver(ctx, report.Execution(s.meta, s.catalog, ev, s.now()))
}

// onTick fires due deadlines. A due deadline is a no-op unless the session
// is Ready with a bound account; skipped firings are not queued.
func (s *Session) onTick(now time.Time) {
	for _, kind := range s.sched.Due(now) {
		if s.state != StateReady || s.accountID == 0 {
			observ.IncCounter(observ.DeadlinesSkippedTotal, s.labels())
			s.log.Info("deadline skipped, session not ready",
				zap.Stringer("report", kind),
				zap.Stringer("state", s.state))
			continue
		}
		s.issueRequest(kind, now)
	}
}

// issueRequest sends the data request backing one report deadline and
// records the pending entry that will route its response.
func (s *Session) issueRequest(kind RequestKind, now time.Time) {
	req := PendingRequest{Kind: kind, Token: newToken(), IssuedAt: now}

	var payloadKind openapi.PayloadKind
	var body any
	switch kind {
	case RequestPnL:
		payloadKind = openapi.KindPositionPnLReq
		body = openapi.PositionPnLReq{AccountID: s.accountID}
	case RequestDailyDeals:
		req.Window = report.DailyWindow(now)
	case RequestWeeklyDeals:
		req.Window = report.WeeklyWindow(now)
	}
	if kind.isDealList() {
		payloadKind = openapi.KindDealListReq
		body = openapi.DealListReq{
			AccountID:     s.accountID,
			FromTimestamp: req.Window.FromMillis(),
			ToTimestamp:   req.Window.ToMillis(),
			MaxRows:       dealListMaxRows,
		}
	}

	if err := s.pending.add(req); err != nil {
		s.log.Warn("request deferred", zap.Stringer("report", kind), zap.Error(err))
		return
	}
	if !s.sendRequest(payloadKind, req.Token, body) {
		s.pending.remove(req.Token)
		return
	}
	s.log.Info("report request issued",
		zap.Stringer("report", kind),
		zap.String("token", req.Token))
}

// sendRequest marshals and enqueues one outbound message. Send failures
// are logged with account context and never surfaced to the caller's
// scheduling; there is no retry.
func (s *Session) sendRequest(kind openapi.PayloadKind, token string, body any) bool {
	env, err := openapi.Marshal(kind, token, body)
	if err != nil {
		s.log.Error("encode request failed", zap.Stringer("kind", kind), zap.Error(err))
		return false
	}
	if s.client == nil {
		s.log.Warn("send with no transport", zap.Stringer("kind", kind))
		return false
	}
	if err := s.client.Send(env); err != nil {
		observ.IncCounter(observ.SendErrorsTotal, s.labels())
		s.log.Error("send failed", zap.Stringer("kind", kind), zap.Error(err))
		return false
	}
	return true
}

// deliver hands a report body to the notification sink. Failures are
// logged and swallowed; they never retry and never backpressure the
// session loop.
func (s *Session) deliver(ctx context.Context, body string) {
	if err := s.sink.Send(ctx, body); err != nil {
		observ.IncCounter(observ.NotifyErrorsTotal, s.labels())
		s.log.Error("notification failed", zap.Error(err))
		return
	}
	observ.IncCounter(observ.ReportsSentTotal, s.labels())
}

// shutdown leaves the terminal state: a best-effort account logout, then
// transport teardown without awaiting any in-flight response.
func (s *Session) shutdown() {
	s.setState(StateShuttingDown)
	if s.client == nil {
		return
	}
	if s.accountID != 0 {
		s.sendRequest(openapi.KindAccountLogoutReq, "", openapi.AccountLogoutReq{AccountID: s.accountID})
	}
	_ = s.client.Close()
	s.client = nil
	s.log.Info("session stopped")
}

func (s *Session) labels() map[string]string {
	return map[string]string{"account": strconv.FormatInt(s.accountID, 10)}
}
