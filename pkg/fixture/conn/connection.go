// Package conn implements the per-connection state machine: one goroutine
// per accepted TCP socket, alternating between HTTP request/response
// handling and, after a successful upgrade, WebSocket frame handling.
package conn

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nimblewire/fixture/internal/logging"
	"github.com/nimblewire/fixture/pkg/fixture/events"
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
	"github.com/nimblewire/fixture/pkg/fixture/registry"
	"github.com/nimblewire/fixture/pkg/fixture/wsframe"
)

// Connection owns one accepted TCP socket and runs its receive loop until
// the socket closes or the loop is cancelled.
type Connection struct {
	id       string
	sock     net.Conn
	registry *registry.Registry
	bufSize  int
	log      *logging.Logger

	state              atomic.Int32
	ignoreCloseRequest atomic.Bool
	closeOnce          sync.Once
	writeMu            sync.Mutex

	onDataReceived *events.Hub[DataEvent]
	onDataSent     *events.Hub[DataEvent]
	onLogMessage   *events.Hub[LogEvent]
	onStarting     *events.Hub[LifecycleEvent]
	onStopped      *events.Hub[LifecycleEvent]
}

// New wraps an accepted socket. The connection starts in StateHTTP; call
// Serve to run its receive loop.
func New(id string, sock net.Conn, reg *registry.Registry, bufSize int, log *logging.Logger) *Connection {
	c := &Connection{
		id:             id,
		sock:           sock,
		registry:       reg,
		bufSize:        bufSize,
		log:            log,
		onDataReceived: events.NewHub[DataEvent](0),
		onDataSent:     events.NewHub[DataEvent](0),
		onLogMessage:   events.NewHub[LogEvent](0),
		onStarting:     events.NewHub[LifecycleEvent](0),
		onStopped:      events.NewHub[LifecycleEvent](0),
	}
	c.state.Store(int32(StateHTTP))
	return c
}

// ID returns the connection's stable identifier.
func (c *Connection) ID() string { return c.id }

// State returns the connection's current state.
func (c *Connection) State() State { return State(c.state.Load()) }

// SetIgnoreCloseRequest sets the testing switch that suppresses this
// connection's reply to an incoming Close frame.
func (c *Connection) SetIgnoreCloseRequest(ignore bool) { c.ignoreCloseRequest.Store(ignore) }

func (c *Connection) OnDataReceived() *events.Hub[DataEvent]  { return c.onDataReceived }
func (c *Connection) OnDataSent() *events.Hub[DataEvent]      { return c.onDataSent }
func (c *Connection) OnLogMessage() *events.Hub[LogEvent]     { return c.onLogMessage }
func (c *Connection) OnStarting() *events.Hub[LifecycleEvent] { return c.onStarting }
func (c *Connection) OnStopped() *events.Hub[LifecycleEvent]  { return c.onStopped }

// Serve runs the receive loop until the socket closes, a protocol error
// forces a close, or ctx is cancelled. It always returns nil; failures are
// terminal transitions to StateClosed, not errors the caller must handle.
func (c *Connection) Serve(ctx context.Context) error {
	c.log.Info("connection accepted")
	defer c.finalize(ctx)
	if err := c.onStarting.Notify(ctx, LifecycleEvent{ConnID: c.id}); err != nil {
		c.log.Error("onStarting observer failed", err)
		return nil
	}

	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			c.closeSocket()
		case <-watchDone:
		}
	}()

	for c.State() != StateClosed {
		chunk, err := c.readChunk()
		if err != nil {
			c.log.Warn("read failed, closing connection", zap.Error(err))
			return nil
		}
		if err := c.onLogMessage.Notify(ctx, LogEvent{ConnID: c.id, Message: fmt.Sprintf("RECV %d bytes", len(chunk))}); err != nil {
			c.log.Error("onLogMessage observer failed", err)
			return nil
		}

		var handleErr error
		switch c.State() {
		case StateHTTP:
			handleErr = c.handleHTTP(ctx, chunk)
		case StateWebSocketOpen:
			handleErr = c.handleFrame(ctx, chunk)
		default:
			return nil
		}
		if handleErr != nil {
			c.log.Error("handling failed, closing connection", handleErr)
			return nil
		}
	}
	return nil
}

// readChunk implements the buffer-drain contract: block for the first
// available bytes, then keep reading immediately-available bytes (probed
// with a zero-duration deadline) until none remain, concatenating into one
// chunk. This handles a message spanning multiple socket reads without
// imposing any length-based framing.
func (c *Connection) readChunk() ([]byte, error) {
	buf := make([]byte, c.bufSize)
	if err := c.sock.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}
	n, err := c.sock.Read(buf)
	if err != nil {
		return nil, err
	}
	chunk := append([]byte(nil), buf[:n]...)

	for {
		if err := c.sock.SetReadDeadline(time.Now()); err != nil {
			break
		}
		n, err := c.sock.Read(buf)
		if err != nil {
			break
		}
		chunk = append(chunk, buf[:n]...)
	}
	return chunk, nil
}

func (c *Connection) handleHTTP(ctx context.Context, chunk []byte) error {
	if err := c.onDataReceived.Notify(ctx, DataEvent{ConnID: c.id, Data: string(chunk)}); err != nil {
		return err
	}

	req, parseErr := httpmsg.Parse(chunk)
	var resp *httpmsg.Response
	var err error
	if parseErr != nil {
		resp, err = c.registry.Dispatch(ctx, c.id, nil)
	} else {
		resp, err = c.registry.Dispatch(ctx, c.id, req)
	}
	if err != nil {
		return err
	}

	isUpgrade := parseErr == nil && req.IsWebSocketUpgrade() && resp.Status() == 101
	if isUpgrade {
		c.state.Store(int32(StateUpgrading))
	}

	if err := c.writeRaw(ctx, resp.Bytes()); err != nil {
		return err
	}

	if isUpgrade {
		c.state.Store(int32(StateWebSocketOpen))
	}
	return nil
}

func (c *Connection) handleFrame(ctx context.Context, chunk []byte) error {
	frame, err := wsframe.Decode(bytes.NewReader(chunk))
	if err != nil {
		return c.closeWithReason(ctx, "protocol error")
	}

	switch frame.Opcode {
	case wsframe.OpcodeText:
		return c.onDataReceived.Notify(ctx, DataEvent{ConnID: c.id, Data: string(frame.Payload)})
	case wsframe.OpcodeClose:
		if c.ignoreCloseRequest.Load() {
			// Testing switch: pretend the close frame never arrived. The
			// connection stays in StateWebSocketOpen until the embedder
			// calls Disconnect.
			return nil
		}
		c.state.Store(int32(StateCloseReceived))
		err := c.writeCloseFrame(ctx, frame.Payload)
		c.state.Store(int32(StateClosed))
		return err
	default:
		return c.closeWithReason(ctx, "unsupported opcode")
	}
}

func (c *Connection) closeWithReason(ctx context.Context, reason string) error {
	c.log.Warn("closing connection", zap.String("reason", reason))
	err := c.writeCloseFrame(ctx, []byte(reason))
	c.state.Store(int32(StateClosed))
	return err
}

// SendData writes data to the socket exactly as given; the caller (Server)
// is responsible for having already encoded it as a WebSocket frame.
func (c *Connection) SendData(ctx context.Context, data []byte) error {
	return c.writeRaw(ctx, data)
}

// Disconnect implements the server-initiated close: if the connection is
// mid-WebSocket-session, it sends a Close frame and transitions to
// StateCloseSent, leaving the socket open until the peer tears it down;
// otherwise it cancels the receive loop directly.
func (c *Connection) Disconnect(ctx context.Context) error {
	if c.State() == StateWebSocketOpen {
		c.state.Store(int32(StateCloseSent))
		return c.writeCloseFrame(ctx, nil)
	}
	c.closeSocket()
	return nil
}

func (c *Connection) writeCloseFrame(ctx context.Context, reason []byte) error {
	var buf bytes.Buffer
	if err := wsframe.Encode(&buf, wsframe.OpcodeClose, reason); err != nil {
		return err
	}
	return c.writeRaw(ctx, buf.Bytes())
}

func (c *Connection) writeRaw(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	_, err := c.sock.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}
	if err := c.onLogMessage.Notify(ctx, LogEvent{ConnID: c.id, Message: fmt.Sprintf("SEND %d bytes", len(data))}); err != nil {
		return err
	}
	return c.onDataSent.Notify(ctx, DataEvent{ConnID: c.id, Data: string(data)})
}

func (c *Connection) closeSocket() {
	c.closeOnce.Do(func() {
		_ = c.sock.Close()
	})
}

func (c *Connection) finalize(ctx context.Context) {
	c.state.Store(int32(StateClosed))
	c.closeSocket()
	c.log.Info("connection closed")
	// This is the terminal hook; an observer error here has no further
	// path to propagate to, so it's discarded same as any async one.
	_ = c.onStopped.Notify(ctx, LifecycleEvent{ConnID: c.id})
}
