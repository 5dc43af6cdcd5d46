package handler

import (
	"github.com/nimblewire/fixture/internal/idgen"
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
)

var defaultBadRequestBody = []byte("<html><body><h1>400 Bad Request</h1></body></html>")

// BadRequest is the built-in 400 handler dispatched when the request bytes
// failed to parse. Since a malformed request has no parsed identifier, req
// may be nil; Handle synthesizes a fresh response identifier in that case.
type BadRequest struct {
	Payload     []byte
	MIME        string
	ServerIdent string
}

// NewBadRequest creates the default BadRequest handler.
func NewBadRequest() *BadRequest {
	return &BadRequest{Payload: defaultBadRequestBody, MIME: "text/html;charset=utf-8", ServerIdent: DefaultServerIdent}
}

// Handle returns a 400 response with the handler's payload as body.
func (h *BadRequest) Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	id := idgen.New()
	if req != nil {
		id = req.ID()
	}
	resp := httpmsg.NewResponse(id, 400)
	resp.SetBody(h.Payload)
	httpmsg.ApplyStandardDecoration(resp, h.MIME, h.ServerIdent)
	return resp, nil
}
