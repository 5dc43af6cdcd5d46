package server

import "fmt"

// ErrConfiguration is returned when a pre-start-only setting is changed
// after Start has been called.
type ErrConfiguration struct {
	Setting string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("server: %s can only be set before Start", e.Setting)
}

// ErrUnknownConnection is returned by every connection-scoped API
// (SendData, Disconnect, IgnoreCloseConnectionRequest) when connID does
// not name an active connection.
type ErrUnknownConnection struct {
	ConnID string
}

func (e *ErrUnknownConnection) Error() string {
	return fmt.Sprintf("server: unknown connection %q", e.ConnID)
}
