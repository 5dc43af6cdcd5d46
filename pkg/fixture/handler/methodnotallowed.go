package handler

import (
	"sort"
	"strings"

	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
)

var defaultMethodNotAllowedBody = []byte("<html><body><h1>405 Method Not Allowed</h1></body></html>")

// MethodNotAllowed is the built-in 405 handler dispatched when a path is
// registered but not for the requested method. Its allowed method set is
// bound at construction time, not passed per call — constructing one with
// an empty set is a programmer error and panics immediately, which is what
// makes the HandlerMisuse error class from the original design unnecessary:
// misuse can no longer happen at dispatch time.
type MethodNotAllowed struct {
	Payload     []byte
	MIME        string
	ServerIdent string
	allow       string
}

// NewMethodNotAllowed constructs a MethodNotAllowed handler for the given
// non-empty set of methods. The Allow header value is computed once here:
// uppercased, ASCII-sorted, comma-space separated.
func NewMethodNotAllowed(methods []httpmsg.Method) *MethodNotAllowed {
	if len(methods) == 0 {
		panic("handler: NewMethodNotAllowed requires a non-empty method set")
	}
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.String())
	}
	sort.Strings(names)
	return &MethodNotAllowed{
		Payload:     defaultMethodNotAllowedBody,
		MIME:        "text/html;charset=utf-8",
		ServerIdent: DefaultServerIdent,
		allow:       strings.Join(names, ", "),
	}
}

// Handle returns a 405 response with the Allow header set to the handler's
// precomputed method list.
func (h *MethodNotAllowed) Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	resp := httpmsg.NewResponse(req.ID(), 405)
	resp.SetBody(h.Payload)
	httpmsg.ApplyStandardDecoration(resp, h.MIME, h.ServerIdent)
	resp.Header().Set("Allow", h.allow)
	return resp, nil
}
