// Package sockpoll applies low-latency socket tuning to accepted
// connections. Disabling Nagle's algorithm matters here because the
// connection's read loop deliberately drains whatever is already queued
// instead of waiting to coalesce a full segment (see conn.Connection.Serve).
package sockpoll

import "net"

// DisableNagle sets TCP_NODELAY on conn if it is a *net.TCPConn. Any other
// net.Conn (e.g. a net.Pipe used in tests) is left untouched.
func DisableNagle(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	return setNoDelay(tcpConn)
}
