package server

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nimblewire/fixture/pkg/fixture/handler"
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
)

func startTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	s := New(0, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	t.Cleanup(cancel)
	return s
}

func dial(t *testing.T, s *Server) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(s.Port()))
	require.NoError(t, err)
	c.SetDeadline(time.Now().Add(3 * time.Second))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestServerStartAssignsPort(t *testing.T) {
	s := startTestServer(t)
	require.NotZero(t, s.Port())
}

func TestServerGetRegisteredResource(t *testing.T) {
	s := startTestServer(t)
	s.RegisterHandler("/hello", handler.NewResource([]byte("hi")))

	c := dial(t, s)
	_, err := c.Write([]byte("GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(c)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "200 OK")
}

func TestServerUnknownPathReturns404(t *testing.T) {
	s := startTestServer(t)

	c := dial(t, s)
	_, err := c.Write([]byte("GET /missing HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(c)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, "404")
}

func TestServerWrongMethodReturns405WithAllow(t *testing.T) {
	s := startTestServer(t)
	s.RegisterHandlerMethod("/thing", httpmsg.MethodPOST, handler.NewResource([]byte("posted")))
	s.RegisterHandlerMethod("/thing", httpmsg.MethodDELETE, handler.NewResource([]byte("deleted")))

	c := dial(t, s)
	_, err := c.Write([]byte("GET /thing HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(c)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, statusLine, "405")

	var allow string
	for {
		headerLine, err := reader.ReadString('\n')
		require.NoError(t, err)
		if headerLine == "\r\n" {
			break
		}
		if len(headerLine) > 6 && headerLine[:6] == "Allow:" {
			allow = headerLine
		}
	}
	require.Contains(t, allow, "DELETE, POST")
}

func TestServerSendDataAndDisconnect(t *testing.T) {
	s := startTestServer(t)

	c := dial(t, s)
	_, err := c.Write([]byte("GET /ws HTTP/1.1\r\nHost: localhost\r\nConnection: Upgrade\r\nUpgrade: websocket\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(c)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, statusLine, "101")

	var connID string
	require.Eventually(t, func() bool {
		found := false
		s.conns.Range(func(key, _ any) bool {
			connID = key.(string)
			found = true
			return false
		})
		return found
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.SendData(context.Background(), connID, "hello there"))
	require.NoError(t, s.IgnoreCloseConnectionRequest(connID, true))
	require.NoError(t, s.Disconnect(context.Background(), connID))

	err = s.SendData(context.Background(), "nonexistent", "x")
	require.Error(t, err)
	require.IsType(t, &ErrUnknownConnection{}, err)
}

func TestServerStopTerminatesActiveConnectionsAndRefusesNewOnes(t *testing.T) {
	s := New(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))

	c := dial(t, s)
	_, err := c.Write([]byte("GET /ws HTTP/1.1\r\nHost: localhost\r\nConnection: Upgrade\r\nUpgrade: websocket\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(c)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, statusLine, "101")

	var connID string
	require.Eventually(t, func() bool {
		found := false
		s.conns.Range(func(key, _ any) bool {
			connID = key.(string)
			found = true
			return false
		})
		return found
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())

	require.Eventually(t, func() bool {
		found := false
		s.conns.Range(func(_, _ any) bool {
			found = true
			return false
		})
		return !found
	}, time.Second, 10*time.Millisecond)

	err = s.Disconnect(context.Background(), connID)
	require.Error(t, err)
	require.IsType(t, &ErrUnknownConnection{}, err)

	_, err = net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(s.Port()))
	require.Error(t, err)
}
