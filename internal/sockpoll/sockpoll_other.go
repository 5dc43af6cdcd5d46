//go:build !linux && !darwin

package sockpoll

import "net"

func setNoDelay(conn *net.TCPConn) error {
	return conn.SetNoDelay(true)
}
