// Package report renders account activity into Telegram-ready HTML text.
// Every function here is a pure transform over already-received records;
// nothing in this package touches the network or the session state.
package report

import (
	"fmt"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Meta labels every report with the account it describes.
type Meta struct {
	AccountID int64
	HostType  string // "live" or "demo"
}

// host renders the host class the way report titles expect it.
func (m Meta) host() string {
	if m.HostType == "" {
		return "Demo"
	}
	return strings.ToUpper(m.HostType[:1]) + strings.ToLower(m.HostType[1:])
}

func (m Meta) accountLine() string {
	return fmt.Sprintf("🏦 %s A/c %d\n", m.host(), m.AccountID)
}

// Sanitize strips markup characters from externally supplied text (for
// example disconnect reasons) so it cannot break the HTML message body.
func Sanitize(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// ConnectionLost is the notification sent when the transport drops.
func ConnectionLost(meta Meta, reason string, now time.Time) string {
	var b strings.Builder
	b.WriteString("⚠️ <b>CONNECTION LOST</b>\n")
	b.WriteString(meta.accountLine())
	fmt.Fprintf(&b, "📅 Time: %s\n", now.Format(timeLayout))
	fmt.Fprintf(&b, "📝 Reason: %s\n", Sanitize(reason))
	return b.String()
}

// Reconnected is the notification sent after a successful re-auth,
// carrying the number of attempts the recovery took.
func Reconnected(meta Meta, attempts int, now time.Time) string {
	var b strings.Builder
	b.WriteString("✅ <b>RECONNECTION SUCCESSFUL</b>\n")
	b.WriteString(meta.accountLine())
	fmt.Fprintf(&b, "📅 Time: %s\n", now.Format(timeLayout))
	fmt.Fprintf(&b, "🔄 Connection restored after %d attempts.", attempts)
	return b.String()
}
