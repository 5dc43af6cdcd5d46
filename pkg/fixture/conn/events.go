package conn

// DataEvent is the payload of OnDataReceived/OnDataSent: connID plus the
// text form of the bytes that crossed the wire (the UTF-8 decoding of an
// HTTP chunk, or the decoded text payload of a WebSocket frame).
type DataEvent struct {
	ConnID string
	Data   string
}

// LifecycleEvent is the payload of OnStarting/OnStopped.
type LifecycleEvent struct {
	ConnID string
}

// LogEvent is the payload of OnLogMessage.
type LogEvent struct {
	ConnID  string
	Message string
}
