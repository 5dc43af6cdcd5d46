// Package httpmsg implements the HTTP/1.1 message codec: parsing request
// bytes into a structured Request and serializing a Response back to bytes.
package httpmsg

import "strings"

// Method is the closed set of HTTP methods this server understands.
type Method uint8

// Method values. MethodUnknown is the zero value and is never produced by
// Parse for a well-formed request line.
const (
	MethodUnknown Method = iota
	MethodGET
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodHEAD
	MethodOPTIONS
	MethodTRACE
	MethodCONNECT
)

var methodNames = [...]string{
	MethodUnknown: "",
	MethodGET:     "GET",
	MethodPOST:    "POST",
	MethodPUT:     "PUT",
	MethodDELETE:  "DELETE",
	MethodHEAD:    "HEAD",
	MethodOPTIONS: "OPTIONS",
	MethodTRACE:   "TRACE",
	MethodCONNECT: "CONNECT",
}

// String returns the canonical uppercase token for m, or "" for MethodUnknown.
func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return ""
}

// ParseMethod maps a method token to a Method, case-insensitively.
// It returns (MethodUnknown, false) for any token that is not one of the
// eight methods this server dispatches on.
func ParseMethod(token string) (Method, bool) {
	upper := strings.ToUpper(token)
	for id, name := range methodNames {
		if id == int(MethodUnknown) {
			continue
		}
		if name == upper {
			return Method(id), true
		}
	}
	return MethodUnknown, false
}
