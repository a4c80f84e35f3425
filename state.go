package splitflap

// State is the lifecycle state of a Driver
type State int32

const (
	StateDisconnected State = iota
	StateOpening
	StateHandshaking
	StateStreaming
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateOpening:
		return "opening"
	case StateHandshaking:
		return "handshaking"
	case StateStreaming:
		return "streaming"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
