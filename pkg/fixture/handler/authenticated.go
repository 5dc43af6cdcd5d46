package handler

import "github.com/nimblewire/fixture/pkg/fixture/httpmsg"

var (
	defaultUnauthorizedBody = []byte("<html><body><h1>401 Unauthorized</h1></body></html>")
	defaultForbiddenBody    = []byte("<html><body><h1>403 Forbidden</h1></body></html>")
)

// AuthenticatedResource wraps a Resource behind Basic-auth-shaped access
// control. If Authenticators is empty, every present Authorization value is
// accepted — the intent, per the wire contract, is "authentication is not
// enforced" rather than "nothing is ever authorized".
type AuthenticatedResource struct {
	Resource       *Resource
	Authenticators []Authenticator
	ServerIdent    string
}

// NewAuthenticatedResource wraps resource with the given ordered list of
// authenticators.
func NewAuthenticatedResource(resource *Resource, authenticators ...Authenticator) *AuthenticatedResource {
	return &AuthenticatedResource{Resource: resource, Authenticators: authenticators, ServerIdent: DefaultServerIdent}
}

// Handle implements the sub-contract: missing Authorization -> 401 with
// Www-Authenticate: Basic; present-but-empty value list -> 400; present but
// rejected by every authenticator -> 403; otherwise delegate to Resource.
func (h *AuthenticatedResource) Handle(connID string, req *httpmsg.Request) (*httpmsg.Response, error) {
	if !req.Header().Has("Authorization") {
		resp := httpmsg.NewResponse(req.ID(), 401)
		resp.SetBody(defaultUnauthorizedBody)
		httpmsg.ApplyStandardDecoration(resp, "text/html;charset=utf-8", h.ServerIdent)
		resp.Header().Set("Www-Authenticate", "Basic")
		return resp, nil
	}

	values := req.Header().Values("Authorization")
	if len(values) == 0 || values[0] == "" {
		resp := httpmsg.NewResponse(req.ID(), 400)
		resp.SetBody(defaultBadRequestBody)
		httpmsg.ApplyStandardDecoration(resp, "text/html;charset=utf-8", h.ServerIdent)
		return resp, nil
	}

	if h.accepted(values[0]) {
		return h.Resource.Handle(connID, req)
	}

	resp := httpmsg.NewResponse(req.ID(), 403)
	resp.SetBody(defaultForbiddenBody)
	httpmsg.ApplyStandardDecoration(resp, "text/html;charset=utf-8", h.ServerIdent)
	return resp, nil
}

func (h *AuthenticatedResource) accepted(value string) bool {
	if len(h.Authenticators) == 0 {
		return true
	}
	for _, a := range h.Authenticators {
		if a.Accepts(value) {
			return true
		}
	}
	return false
}
