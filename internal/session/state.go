package session

// State is the connection/authentication lifecycle of one account session.
// Any non-terminal state can fall back to StateDisconnected on transport
// failure; StateShuttingDown is reachable only from an explicit shutdown.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAppAuthenticating
	StateAccountAuthenticating
	StateReady
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAppAuthenticating:
		return "app_authenticating"
	case StateAccountAuthenticating:
		return "account_authenticating"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}
