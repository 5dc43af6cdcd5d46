package conn

// State is one node in a connection's lifecycle. The zero value, StateHTTP,
// is the state every connection starts in.
type State int32

const (
	// StateHTTP is the initial state: the connection speaks plain HTTP/1.1
	// request/response.
	StateHTTP State = iota
	// StateUpgrading is entered while a WebSocket handshake response is
	// being written; it exists only for the duration of that write.
	StateUpgrading
	// StateWebSocketOpen is entered once the handshake response has been
	// fully written; the connection now speaks RFC 6455 frames.
	StateWebSocketOpen
	// StateCloseSent is entered when this side initiates the close
	// handshake (server-initiated Disconnect).
	StateCloseSent
	// StateCloseReceived is entered transiently while a Close frame from
	// the peer is being answered.
	StateCloseReceived
	// StateClosed is terminal: the socket has been closed and the receive
	// loop has exited.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateHTTP:
		return "Http"
	case StateUpgrading:
		return "Upgrading"
	case StateWebSocketOpen:
		return "WebSocketOpen"
	case StateCloseSent:
		return "CloseSent"
	case StateCloseReceived:
		return "CloseReceived"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
