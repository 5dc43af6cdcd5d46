package httpmsg

// Response is a mutable response builder. It is produced by a handler and
// consumed once by the connection that serializes and writes it.
type Response struct {
	requestID string
	status    int
	version   string
	header    Header
	body      []byte
}

// NewResponse creates a response echoing requestID, defaulting to
// HTTP/1.1 and the given status code, with an empty header set and body.
func NewResponse(requestID string, status int) *Response {
	return &Response{
		requestID: requestID,
		status:    status,
		version:   "HTTP/1.1",
		header:    NewHeader(),
	}
}

// RequestID returns the identifier of the request that produced this
// response.
func (r *Response) RequestID() string { return r.requestID }

// Status returns the current status code.
func (r *Response) Status() int { return r.status }

// SetStatus overrides the status code.
func (r *Response) SetStatus(code int) { r.status = code }

// Version returns the HTTP version this response will be serialized with.
func (r *Response) Version() string { return r.version }

// SetVersion overrides the HTTP version, default "HTTP/1.1".
func (r *Response) SetVersion(v string) { r.version = v }

// Header returns a mutable pointer to the response's header collection.
func (r *Response) Header() *Header { return &r.header }

// Body returns the current body bytes.
func (r *Response) Body() []byte { return r.body }

// SetBody replaces the response body.
func (r *Response) SetBody(b []byte) { r.body = b }
