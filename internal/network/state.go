package network

// ConnectivityState mirrors the NetworkManager NMState codes.
type ConnectivityState uint32

// NetworkManager connectivity states, ascending by depth of attachment
const (
	StateUnknown         ConnectivityState = 0
	StateAsleep          ConnectivityState = 10
	StateDisconnected    ConnectivityState = 20
	StateDisconnecting   ConnectivityState = 30
	StateConnecting      ConnectivityState = 40
	StateConnectedLocal  ConnectivityState = 50
	StateConnectedSite   ConnectivityState = 60
	StateConnectedGlobal ConnectivityState = 70
)

// StateFromValue converts a raw NetworkManager state code. Unrecognized
// codes map to StateUnknown.
func StateFromValue(value uint32) ConnectivityState {
	switch ConnectivityState(value) {
	case StateAsleep, StateDisconnected, StateDisconnecting, StateConnecting,
		StateConnectedLocal, StateConnectedSite, StateConnectedGlobal:
		return ConnectivityState(value)
	default:
		return StateUnknown
	}
}

// IsConnected reports whether the state represents full internet
// connectivity. Only global connectivity counts: local and site-level
// attachment cannot reach the lookup service anyway.
func (s ConnectivityState) IsConnected() bool {
	return s == StateConnectedGlobal
}

func (s ConnectivityState) String() string {
	switch s {
	case StateAsleep:
		return "asleep"
	case StateDisconnected:
		return "disconnected"
	case StateDisconnecting:
		return "disconnecting"
	case StateConnecting:
		return "connecting"
	case StateConnectedLocal:
		return "connected-local"
	case StateConnectedSite:
		return "connected-site"
	case StateConnectedGlobal:
		return "connected-global"
	default:
		return "unknown"
	}
}

// Event is a semantic network transition derived from raw state changes.
type Event int

const (
	// EventConnected signals full connectivity was gained, or that the
	// active connection set changed while connected (VPN attach/detach).
	EventConnected Event = iota
	// EventDisconnected signals full connectivity was lost.
	EventDisconnected
)

func (e Event) String() string {
	switch e {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
