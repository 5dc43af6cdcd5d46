// Package server implements the accept loop and the embedder-facing API:
// registering handlers, starting/stopping the listener, and driving data
// to and from individual connections by ID.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nimblewire/fixture/internal/idgen"
	"github.com/nimblewire/fixture/internal/logging"
	"github.com/nimblewire/fixture/internal/sockpoll"
	"github.com/nimblewire/fixture/pkg/fixture/conn"
	"github.com/nimblewire/fixture/pkg/fixture/events"
	"github.com/nimblewire/fixture/pkg/fixture/handler"
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
	"github.com/nimblewire/fixture/pkg/fixture/registry"
	"github.com/nimblewire/fixture/pkg/fixture/wsframe"
)

// Server is an in-memory HTTP/1.1 + WebSocket fixture: it listens on a
// loopback TCP port, dispatches requests to handlers an embedding test
// registers, and exposes an observable surface for asserting on the bytes
// that crossed the wire.
type Server struct {
	cfg      Config
	registry *registry.Registry
	log      *logging.Logger

	mu        sync.Mutex // guards listener/port/started/cancel once Start begins
	listener  net.Listener
	port      int
	started   atomic.Bool
	accepting atomic.Bool
	cancel    context.CancelFunc

	conns sync.Map // connID string -> *conn.Connection

	logLines   []string
	logLinesMu sync.Mutex

	onDataReceived       *events.Hub[conn.DataEvent]
	onDataSent           *events.Hub[conn.DataEvent]
	onClientConnected    *events.Hub[string]
	onClientDisconnected *events.Hub[string]
	onLogMessage         *events.Hub[string]

	wg sync.WaitGroup
}

// New creates a Server bound to port (0 selects an OS-assigned port); call
// Start to begin listening.
func New(port int, opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = logging.Development()
	}

	s := &Server{
		cfg:                  cfg,
		registry:             registry.New(cfg.ServerIdent),
		log:                  log,
		port:                 port,
		onDataReceived:       events.NewHub[conn.DataEvent](0),
		onDataSent:           events.NewHub[conn.DataEvent](0),
		onClientConnected:    events.NewHub[string](0),
		onClientDisconnected: events.NewHub[string](0),
		onLogMessage:         events.NewHub[string](0),
	}
	return s
}

// Port returns the bound port. Before Start, this is whatever port was
// passed to New (0 if OS-assigned was requested); after Start, it is
// always the actual bound port.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// BufferSize returns the configured per-connection read buffer size.
func (s *Server) BufferSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.BufferSize
}

// SetBufferSize changes the per-connection read buffer size. It fails with
// *ErrConfiguration once Start has been called.
func (s *Server) SetBufferSize(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.Load() {
		return &ErrConfiguration{Setting: "BufferSize"}
	}
	s.cfg.BufferSize = n
	return nil
}

// RegisterHandler registers h for GET requests to path.
func (s *Server) RegisterHandler(path string, h handler.Handler) {
	s.registry.RegisterGET(path, h)
}

// RegisterHandlerMethod registers h for (path, method).
func (s *Server) RegisterHandlerMethod(path string, method httpmsg.Method, h handler.Handler) {
	s.registry.Register(path, method, h)
}

// OnDataReceived returns the hub notified whenever any connection receives
// bytes (the UTF-8 decoding of an HTTP chunk, or a WebSocket text payload).
func (s *Server) OnDataReceived() *events.Hub[conn.DataEvent] { return s.onDataReceived }

// OnDataSent returns the hub notified whenever any connection writes bytes.
func (s *Server) OnDataSent() *events.Hub[conn.DataEvent] { return s.onDataSent }

// OnClientConnected returns the hub notified with a connID when a socket
// is accepted.
func (s *Server) OnClientConnected() *events.Hub[string] { return s.onClientConnected }

// OnClientDisconnected returns the hub notified with a connID when a
// connection's receive loop terminates.
func (s *Server) OnClientDisconnected() *events.Hub[string] { return s.onClientDisconnected }

// OnLogMessage returns the hub notified with every line also appended to
// the server's Log().
func (s *Server) OnLogMessage() *events.Hub[string] { return s.onLogMessage }

// OnRequestHandling returns the hub notified just before a handler runs;
// see registry.Registry.OnRequestHandling for which handlers it covers.
func (s *Server) OnRequestHandling() *events.Hub[registry.RequestEvent] {
	return s.registry.OnRequestHandling()
}

// OnRequestHandled returns the hub notified just after a handler returns;
// see registry.Registry.OnRequestHandled for which handlers it covers.
func (s *Server) OnRequestHandled() *events.Hub[registry.RequestEvent] {
	return s.registry.OnRequestHandled()
}

// Log returns a snapshot of every log line recorded so far.
func (s *Server) Log() []string {
	s.logLinesMu.Lock()
	defer s.logLinesMu.Unlock()
	out := make([]string, len(s.logLines))
	copy(out, s.logLines)
	return out
}

func (s *Server) appendLog(ctx context.Context, line string) {
	s.logLinesMu.Lock()
	s.logLines = append(s.logLines, line)
	s.logLinesMu.Unlock()
	// The log stream is best-effort broadcast; a failing observer here
	// has no request or connection to abort.
	_ = s.onLogMessage.Notify(ctx, line)
}

// Start binds the listener and returns once the port is known; the accept
// loop itself runs in the background until ctx is cancelled or Stop is
// called. Callers needing to block until the server is fully torn down
// should retain ctx and wait on it themselves, or call Wait.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started.Load() {
		s.mu.Unlock()
		return fmt.Errorf("server: already started")
	}
	ln, err := net.Listen("tcp", "127.0.0.1:"+strconv.Itoa(s.port))
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started.Store(true)
	s.accepting.Store(true)
	internalCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		<-internalCtx.Done()
		s.closeListener()
	}()

	s.appendLog(ctx, fmt.Sprintf("Listening on %s", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop(internalCtx, ln)

	return nil
}

// Wait blocks until the accept loop and every connection it spawned have
// finished (i.e. until ctx is cancelled or Stop closes the listener and
// all connections drain).
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()
	for {
		rawConn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		if !s.accepting.Load() {
			_ = rawConn.Close()
			continue
		}
		_ = sockpoll.DisableNagle(rawConn)
		s.acceptConnection(ctx, rawConn)
	}
}

func (s *Server) acceptConnection(ctx context.Context, rawConn net.Conn) {
	connID := idgen.New()
	s.log.Info("accepted connection", zap.String("remote_addr", rawConn.RemoteAddr().String()))
	c := conn.New(connID, rawConn, s.registry, s.cfg.BufferSize, s.log.WithConn(connID))
	s.conns.Store(connID, c)

	_, _ = c.OnDataReceived().AddObserver(func(ctx context.Context, ev conn.DataEvent) error {
		return s.onDataReceived.Notify(ctx, ev)
	}, events.ObserverOptions{}, "forward to server")

	_, _ = c.OnDataSent().AddObserver(func(ctx context.Context, ev conn.DataEvent) error {
		return s.onDataSent.Notify(ctx, ev)
	}, events.ObserverOptions{}, "forward to server")

	_, _ = c.OnLogMessage().AddObserver(func(ctx context.Context, ev conn.LogEvent) error {
		s.appendLog(ctx, ev.Message)
		return nil
	}, events.ObserverOptions{}, "forward to server log")

	_, _ = c.OnStopped().AddObserver(func(ctx context.Context, ev conn.LifecycleEvent) error {
		s.conns.Delete(ev.ConnID)
		// This fires from within Connection.finalize, which already
		// discards its own onStopped error; nothing further to abort.
		_ = s.onClientDisconnected.Notify(ctx, ev.ConnID)
		return nil
	}, events.ObserverOptions{}, "untrack on stop")

	s.appendLog(ctx, "Client connected")
	_ = s.onClientConnected.Notify(ctx, connID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = c.Serve(ctx)
	}()
}

// Stop atomically stops accepting new connections, cancels the context
// every active connection's receive loop was started with (which drives
// each through its own close/finalize path), clears the active connection
// set, and closes the listener.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.started.Load() {
		s.mu.Unlock()
		return nil
	}
	s.accepting.Store(false)
	s.started.Store(false)
	cancel := s.cancel
	s.mu.Unlock()

	s.log.Info("stopping server")
	if cancel != nil {
		cancel()
	}
	s.conns.Range(func(key, _ any) bool {
		s.conns.Delete(key)
		return true
	})
	s.closeListener()
	return nil
}

func (s *Server) closeListener() {
	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
}

func (s *Server) lookup(connID string) (*conn.Connection, error) {
	v, ok := s.conns.Load(connID)
	if !ok {
		return nil, &ErrUnknownConnection{ConnID: connID}
	}
	return v.(*conn.Connection), nil
}

// SendData encodes text as a WebSocket Text frame and writes it to the
// connection identified by connID.
func (s *Server) SendData(ctx context.Context, connID string, text string) error {
	c, err := s.lookup(connID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := wsframe.Encode(&buf, wsframe.OpcodeText, []byte(text)); err != nil {
		return err
	}
	return c.SendData(ctx, buf.Bytes())
}

// Disconnect terminates the connection identified by connID.
func (s *Server) Disconnect(ctx context.Context, connID string) error {
	c, err := s.lookup(connID)
	if err != nil {
		return err
	}
	return c.Disconnect(ctx)
}

// IgnoreCloseConnectionRequest sets the testing switch that suppresses a
// connection's reply to an incoming Close frame.
func (s *Server) IgnoreCloseConnectionRequest(connID string, ignore bool) error {
	c, err := s.lookup(connID)
	if err != nil {
		return err
	}
	c.SetIgnoreCloseRequest(ignore)
	return nil
}
