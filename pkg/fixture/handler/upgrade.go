package handler

import (
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
	"github.com/nimblewire/fixture/pkg/fixture/wsframe"
)

// Upgrade completes the RFC 6455 opening handshake. It is constructed ad
// hoc by the dispatcher for any request whose IsWebSocketUpgrade predicate
// holds; it never needs registration.
type Upgrade struct {
	ServerIdent string
}

// NewUpgrade creates an Upgrade handler.
func NewUpgrade() *Upgrade {
	return &Upgrade{ServerIdent: DefaultServerIdent}
}

// Handle returns a 101 response with Sec-WebSocket-Accept computed from the
// request's Sec-WebSocket-Key, Connection: Upgrade, Upgrade: websocket, and
// an empty body.
func (h *Upgrade) Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	resp := httpmsg.NewResponse(req.ID(), 101)
	httpmsg.ApplyStandardDecoration(resp, "text/html;charset=utf-8", h.ServerIdent)
	resp.Header().Set("Connection", "Upgrade")
	resp.Header().Set("Upgrade", "websocket")
	resp.Header().Set("Sec-WebSocket-Accept", wsframe.ComputeAcceptKey(req.Header().Get("Sec-WebSocket-Key")))
	resp.SetBody(nil)
	return resp, nil
}
