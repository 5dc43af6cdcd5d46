// Package handler implements the sealed family of response-producing
// handlers described in the component design: Resource, Redirect,
// NotFound, BadRequest, MethodNotAllowed, AuthenticatedResource, and
// Upgrade. Resource, NotFound, BadRequest and MethodNotAllowed carry a
// fixed payload and MIME string; every variant produces a response with the
// standard decoration applied.
package handler

import "github.com/nimblewire/fixture/pkg/fixture/httpmsg"

// DefaultServerIdent is used by ApplyStandardDecoration when a handler is
// constructed without an explicit server identity (mainly in tests).
const DefaultServerIdent = "fixtureserver/1"

// Handler is the single-operation contract every variant implements.
// Variant-specific data (e.g. MethodNotAllowed's allowed method set) is
// bound at construction time rather than passed per call — see DESIGN.md
// for why this removes the HandlerMisuse error class entirely.
type Handler interface {
	Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error)
}
