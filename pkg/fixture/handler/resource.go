package handler

import "github.com/nimblewire/fixture/pkg/fixture/httpmsg"

// Resource serves a fixed byte payload with status 200.
type Resource struct {
	Payload     []byte
	MIME        string
	ServerIdent string
}

// NewResource creates a Resource with the default MIME type
// text/html;charset=utf-8.
func NewResource(payload []byte) *Resource {
	return &Resource{Payload: payload, MIME: "text/html;charset=utf-8", ServerIdent: DefaultServerIdent}
}

// Handle returns a 200 response whose body is the resource's payload.
func (h *Resource) Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	resp := httpmsg.NewResponse(req.ID(), 200)
	resp.SetBody(h.Payload)
	httpmsg.ApplyStandardDecoration(resp, h.MIME, h.ServerIdent)
	return resp, nil
}
