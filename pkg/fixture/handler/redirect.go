package handler

import "github.com/nimblewire/fixture/pkg/fixture/httpmsg"

// Redirect responds 301 with a Location header and an empty body.
type Redirect struct {
	Target      string
	ServerIdent string
}

// NewRedirect creates a Redirect handler pointing at target.
func NewRedirect(target string) *Redirect {
	return &Redirect{Target: target, ServerIdent: DefaultServerIdent}
}

// Handle returns a 301 response with Location set and Content-Length: 0.
func (h *Redirect) Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	resp := httpmsg.NewResponse(req.ID(), 301)
	httpmsg.ApplyStandardDecoration(resp, "text/html;charset=utf-8", h.ServerIdent)
	resp.Header().Set("Location", h.Target)
	resp.Header().Set("Content-Length", "0")
	resp.SetBody(nil)
	return resp, nil
}
