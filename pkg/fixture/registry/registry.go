// Package registry implements the route table and dispatcher: mapping
// (path, method) pairs to handlers and deciding, for each incoming
// request, which handler answers it.
package registry

import (
	"context"
	"sync"

	"github.com/nimblewire/fixture/pkg/fixture/events"
	"github.com/nimblewire/fixture/pkg/fixture/handler"
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
)

// RequestEvent is the payload carried by OnRequestHandling/OnRequestHandled:
// a read-only snapshot of the request/response pair being processed.
type RequestEvent struct {
	ConnID   string
	Request  *httpmsg.Request
	Response *httpmsg.Response
}

// Registry maps absolute paths to a per-method handler table and dispatches
// incoming requests to the right one, synthesizing the built-in
// 400/404/405/101 responses where no explicit route applies.
//
// Register* may be called at any time: Dispatch does its route lookup under
// a read lock, so registration concurrent with serving is safe (see
// DESIGN.md).
type Registry struct {
	mu    sync.RWMutex
	paths map[string]map[httpmsg.Method]handler.Handler

	notFound    *handler.NotFound
	badRequest  *handler.BadRequest
	serverIdent string

	onRequestHandling *events.Hub[RequestEvent]
	onRequestHandled  *events.Hub[RequestEvent]
}

// New creates an empty Registry with the built-in 400/404 handlers and the
// given server identity string (used by the ad hoc Upgrade handler and any
// handler this registry constructs internally).
func New(serverIdent string) *Registry {
	notFound := handler.NewNotFound()
	notFound.ServerIdent = serverIdent
	badRequest := handler.NewBadRequest()
	badRequest.ServerIdent = serverIdent
	return &Registry{
		paths:             make(map[string]map[httpmsg.Method]handler.Handler),
		notFound:          notFound,
		badRequest:        badRequest,
		serverIdent:       serverIdent,
		onRequestHandling: events.NewHub[RequestEvent](0),
		onRequestHandled:  events.NewHub[RequestEvent](0),
	}
}

// OnRequestHandling returns the hub notified just before a registered,
// NotFound or MethodNotAllowed handler runs. It is not notified for the
// built-in BadRequest and Upgrade responses.
func (r *Registry) OnRequestHandling() *events.Hub[RequestEvent] { return r.onRequestHandling }

// OnRequestHandled returns the hub notified just after a registered,
// NotFound or MethodNotAllowed handler returns. It is not notified for the
// built-in BadRequest and Upgrade responses.
func (r *Registry) OnRequestHandled() *events.Hub[RequestEvent] { return r.onRequestHandled }

// Register binds h to (path, method). A later call for the same pair
// replaces the earlier handler.
func (r *Registry) Register(path string, method httpmsg.Method, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	methods, ok := r.paths[path]
	if !ok {
		methods = make(map[httpmsg.Method]handler.Handler)
		r.paths[path] = methods
	}
	methods[method] = h
}

// RegisterGET is Register(path, httpmsg.MethodGET, h).
func (r *Registry) RegisterGET(path string, h handler.Handler) {
	r.Register(path, httpmsg.MethodGET, h)
}

// Dispatch implements the five-branch decision tree: a malformed request
// (req == nil) gets the built-in BadRequest handler; a WebSocket upgrade
// request gets an ad hoc Upgrade handler; a path with no registered
// methods gets the built-in NotFound handler; a path registered for other
// methods but not this one gets a MethodNotAllowed handler carrying the
// sorted Allow header; otherwise the registered handler answers.
//
// connID is passed through to the handler unchanged; ctx is used only to
// notify the OnRequestHandling/OnRequestHandled hubs, which the BadRequest
// and Upgrade branches return without notifying. A non-nil error
// means a synchronous observer on one of those hubs errored or panicked;
// per the hub's contract that aborts the notify call, and Dispatch
// passes the error straight back to its caller instead of returning a
// response, since the request never finished being handled.
func (r *Registry) Dispatch(ctx context.Context, connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	if req == nil {
		resp, _ := r.badRequest.Handle(connID, nil)
		return resp, nil
	}

	if req.IsWebSocketUpgrade() {
		upgrade := handler.NewUpgrade()
		upgrade.ServerIdent = r.serverIdent
		resp, _ := upgrade.Handle(connID, req)
		return resp, nil
	}

	r.mu.RLock()
	methods, pathExists := r.paths[req.URI().Path]
	var h handler.Handler
	var allowed []httpmsg.Method
	if pathExists {
		h = methods[req.Method()]
		if h == nil {
			allowed = allowedMethods(methods)
		}
	}
	r.mu.RUnlock()

	switch {
	case !pathExists:
		h = r.notFound
	case h == nil:
		mna := handler.NewMethodNotAllowed(allowed)
		mna.ServerIdent = r.serverIdent
		h = mna
	}

	if err := r.onRequestHandling.Notify(ctx, RequestEvent{ConnID: connID, Request: req}); err != nil {
		return nil, err
	}
	resp, _ := h.Handle(connID, req)
	if err := r.onRequestHandled.Notify(ctx, RequestEvent{ConnID: connID, Request: req, Response: resp}); err != nil {
		return nil, err
	}
	return resp, nil
}

func allowedMethods(methods map[httpmsg.Method]handler.Handler) []httpmsg.Method {
	out := make([]httpmsg.Method, 0, len(methods))
	for m := range methods {
		out = append(out, m)
	}
	return out
}
