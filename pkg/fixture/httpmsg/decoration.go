package httpmsg

import (
	"strconv"
	"time"
)

// ApplyStandardDecoration sets the default headers every handler-produced
// response carries unless the handler overrides them afterward:
// Connection: keep-alive, Server: <serverIdent>, Date: <RFC1123 GMT now>,
// Content-Type: <mime>, and Content-Length equal to the body's byte length.
func ApplyStandardDecoration(resp *Response, mime string, serverIdent string) {
	h := resp.Header()
	h.Set("Connection", "keep-alive")
	h.Set("Server", serverIdent)
	h.Set("Date", time.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
	h.Set("Content-Type", mime)
	h.Set("Content-Length", strconv.Itoa(len(resp.Body())))
}
