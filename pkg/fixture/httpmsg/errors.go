package httpmsg

import "errors"

// ErrMalformed is returned by Parse for any request that does not satisfy
// the parse contract: a bad request line, a header line missing ':', a
// missing or duplicated Host header, an unknown method token, or a
// request-target that does not reassemble into a valid URI.
var ErrMalformed = errors.New("httpmsg: malformed request")
