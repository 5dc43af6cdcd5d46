package httpmsg

import (
	"net/url"
	"strings"
)

// Request is an immutable, fully-parsed HTTP/1.1 request. The only way to
// construct one is Parse.
type Request struct {
	id      string
	version string
	method  Method
	uri     *url.URL
	header  Header
	body    []byte
}

// ID returns the opaque identifier assigned to this request at parse time.
func (r *Request) ID() string { return r.id }

// Version is the HTTP version token exactly as received (e.g. "HTTP/1.1").
func (r *Request) Version() string { return r.version }

// Method is the parsed method enum.
func (r *Request) Method() Method { return r.method }

// URI is the absolute URI reconstructed as http://{Host}{request-target}.
func (r *Request) URI() *url.URL { return r.uri }

// Header exposes the request's ordered, multi-valued headers.
func (r *Request) Header() Header { return r.header }

// Body is the request body, possibly empty, never nil.
func (r *Request) Body() []byte { return r.body }

// IsWebSocketUpgrade implements the derived predicate from the wire format:
// Connection contains the token "Upgrade", Upgrade contains the token
// "websocket", and Sec-WebSocket-Key is present and non-empty.
func (r *Request) IsWebSocketUpgrade() bool {
	if !headerTokenContains(r.header.Get("Connection"), "upgrade") {
		return false
	}
	if !headerTokenContains(r.header.Get("Upgrade"), "websocket") {
		return false
	}
	return r.header.Get("Sec-WebSocket-Key") != ""
}

// headerTokenContains reports whether the comma-separated header value
// contains token, case-insensitively, ignoring surrounding whitespace.
func headerTokenContains(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if equalFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
