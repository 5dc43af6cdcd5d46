package handler

import "github.com/nimblewire/fixture/pkg/fixture/httpmsg"

var defaultNotFoundBody = []byte("<html><body><h1>404 Not Found</h1></body></html>")

// NotFound is the built-in 404 handler the registry dispatches to when no
// route is registered for a path.
type NotFound struct {
	Payload     []byte
	MIME        string
	ServerIdent string
}

// NewNotFound creates the default NotFound handler.
func NewNotFound() *NotFound {
	return &NotFound{Payload: defaultNotFoundBody, MIME: "text/html;charset=utf-8", ServerIdent: DefaultServerIdent}
}

// Handle returns a 404 response with the handler's payload as body.
func (h *NotFound) Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	resp := httpmsg.NewResponse(req.ID(), 404)
	resp.SetBody(h.Payload)
	httpmsg.ApplyStandardDecoration(resp, h.MIME, h.ServerIdent)
	return resp, nil
}
