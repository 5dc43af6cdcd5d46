package httpmsg

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteTo serializes r to w per the serialize contract: a CRLF-terminated
// status line, one CRLF-terminated "key: value" line per header value in
// insertion order, a blank CRLF line, then the raw body bytes. No
// transfer-encoding is ever applied.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(statusLine(r.version, r.status))
	b.WriteString("\r\n")
	r.header.VisitAll(func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	})
	b.WriteString("\r\n")

	n, err := io.WriteString(w, b.String())
	if err != nil {
		return int64(n), err
	}
	total := int64(n)
	if len(r.body) > 0 {
		bn, err := w.Write(r.body)
		total += int64(bn)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes serializes r into a single byte slice, using WriteTo internally.
func (r *Response) Bytes() []byte {
	var b strings.Builder
	_, _ = r.WriteTo(&b)
	return []byte(b.String())
}

func statusLine(version string, status int) string {
	reason := ReasonPhrase(status)
	line := fmt.Sprintf("%s %s %s", version, strconv.Itoa(status), reason)
	return strings.TrimRight(line, " ")
}
