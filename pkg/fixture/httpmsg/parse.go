package httpmsg

import (
	"net/url"
	"strings"

	"github.com/nimblewire/fixture/internal/idgen"
)

// Parse implements the HTTP/1.1 request parse contract described in the
// wire format documentation: buf is assumed to hold one complete request.
//
// The body-join behavior is deliberately lossy: if the request body spans
// multiple CRLF-delimited lines, those lines are rejoined with a single
// "\n" rather than the original "\r\n" sequence. A request whose body
// contains embedded CRLFs is therefore not round-trip faithful through
// Parse. This is a known, tested divergence, recorded in the design notes.
func Parse(buf []byte) (*Request, error) {
	text := string(buf)
	lines := strings.Split(text, "\r\n")
	if len(lines) == 0 {
		return nil, ErrMalformed
	}

	method, target, version, ok := parseRequestLine(lines[0])
	if !ok {
		return nil, ErrMalformed
	}

	m, ok := ParseMethod(method)
	if !ok {
		return nil, ErrMalformed
	}

	header := NewHeader()
	i := 1
	for ; i < len(lines); i++ {
		if lines[i] == "" {
			break
		}
		name, value, ok := parseHeaderLine(lines[i])
		if !ok {
			return nil, ErrMalformed
		}
		header.Add(name, value)
	}
	if i == len(lines) {
		// no empty separator line was found; treat as headers-only, no body
	} else {
		i++ // skip the empty separator line
	}

	if header.Count("Host") != 1 {
		return nil, ErrMalformed
	}
	host := header.Get("Host")

	uri, err := url.Parse("http://" + host + target)
	if err != nil {
		return nil, ErrMalformed
	}

	body := []byte{}
	if i < len(lines) {
		body = []byte(strings.Join(lines[i:], "\n"))
	}

	return &Request{
		id:      idgen.New(),
		version: version,
		method:  m,
		uri:     uri,
		header:  header,
		body:    body,
	}, nil
}

// parseRequestLine splits "METHOD SP REQUEST-TARGET SP HTTP-VERSION" into
// its three non-empty whitespace-separated tokens.
func parseRequestLine(line string) (method, target, version string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return "", "", "", false
	}
	return fields[0], fields[1], fields[2], true
}

// parseHeaderLine splits a header line on the first ':' and trims
// leading/trailing whitespace from both the key and the value. A line
// lacking ':' is not a valid header line.
func parseHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return name, value, true
}
