package conn

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nimblewire/fixture/internal/logging"
	"github.com/nimblewire/fixture/pkg/fixture/events"
	"github.com/nimblewire/fixture/pkg/fixture/handler"
	"github.com/nimblewire/fixture/pkg/fixture/registry"
	"github.com/nimblewire/fixture/pkg/fixture/wsframe"
)

func newTestConnection(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })

	reg := registry.New("fixtureserver/1")
	reg.RegisterGET("/hello", handler.NewResource([]byte("hi")))

	c := New("conn-1", server, reg, 4096, logging.New(nil))
	return c, client
}

func TestConnectionHTTPRoundTrip(t *testing.T) {
	c, client := newTestConnection(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = c.Serve(ctx)
		close(done)
	}()

	_, err := client.Write([]byte("GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	require.Contains(t, string(buf[:n]), "200 OK")
	require.Contains(t, string(buf[:n]), "hi")
	require.Equal(t, StateHTTP, c.State())

	client.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not exit after client closed")
	}
}

func TestConnectionUpgradeTransitionsToWebSocketOpen(t *testing.T) {
	c, client := newTestConnection(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = c.Serve(ctx) }()

	req := "GET /ws HTTP/1.1\r\nHost: localhost\r\nConnection: Upgrade\r\nUpgrade: websocket\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	require.Contains(t, string(buf[:n]), "101")
	require.Contains(t, string(buf[:n]), "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")

	require.Eventually(t, func() bool {
		return c.State() == StateWebSocketOpen
	}, time.Second, 10*time.Millisecond)
}

func TestConnectionEchoesTextFrameAsDataReceived(t *testing.T) {
	c, client := newTestConnection(t)
	c.state.Store(int32(StateWebSocketOpen))

	var received string
	done := make(chan struct{})
	_, err := c.OnDataReceived().AddObserver(func(_ context.Context, ev DataEvent) error {
		received = ev.Data
		close(done)
		return nil
	}, events.ObserverOptions{}, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Serve(ctx) }()

	var buf bytes.Buffer
	require.NoError(t, wsframe.Encode(&buf, wsframe.OpcodeText, []byte("Received from client")))
	_, err = client.Write(buf.Bytes())
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("did not observe DataReceived")
	}
	require.Equal(t, "Received from client", received)
}

func TestConnectionIgnoreCloseRequestSuppressesReply(t *testing.T) {
	c, client := newTestConnection(t)
	c.state.Store(int32(StateWebSocketOpen))
	c.SetIgnoreCloseRequest(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = c.Serve(ctx)
		close(done)
	}()

	var buf bytes.Buffer
	require.NoError(t, wsframe.Encode(&buf, wsframe.OpcodeClose, []byte("bye")))
	_, err := client.Write(buf.Bytes())
	require.NoError(t, err)

	// The close frame must not be answered and must not tear the
	// connection down: it stays open until the embedder disconnects it.
	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	n, err := client.Read(make([]byte, 16))
	require.Zero(t, n)
	require.Error(t, err)
	require.Equal(t, StateWebSocketOpen, c.State())

	select {
	case <-done:
		t.Fatal("Serve exited even though the close frame was ignored")
	default:
	}

	// net.Pipe is synchronous: something has to read Disconnect's close
	// frame or the write blocks forever.
	readErrCh := make(chan error, 1)
	go func() {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, err := client.Read(make([]byte, 16))
		readErrCh <- err
	}()
	require.NoError(t, c.Disconnect(ctx))
	require.NoError(t, <-readErrCh)

	client.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not exit after Disconnect")
	}
}

func TestConnectionCancellationClosesSocket(t *testing.T) {
	c, client := newTestConnection(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Serve(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not exit after cancellation")
	}
	require.Equal(t, StateClosed, c.State())

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, err := client.Read(make([]byte, 16))
	require.Error(t, err)
}
