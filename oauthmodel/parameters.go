package oauthmodel

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

type ResponseType string

const CodeResponseType ResponseType = "code"

// AuthorizationParameters holds parameters for the OAuth2 authorization request.
// These are received as query parameters at the /authorize endpoint.
type AuthorizationParameters struct {
	// ResponseType specifies what the authorization endpoint should return.
	// Required: Yes
	// Example: "code" (the only supported value)
	ResponseType ResponseType

	// ClientID identifies the application requesting authorization.
	// Required: Yes
	// Example: "enquiry-web"
	// Validated against: clients.Client.ID in the client registry
	ClientID string

	// RedirectURI is where the authorization response will be sent.
	// Required: Yes
	// Example: "https://myapp.com/callback"
	// Validated against: clients.Client.RedirectURIs
	// Security: Must exactly match a registered URI to prevent open redirects
	RedirectURI string

	// State is an opaque value used by the client to maintain state between request and callback.
	// Required: No (recommended)
	// Example: "af0ifjsldkj"
	// Security: Echoed back untouched; the client is responsible for checking it
	State string
}

// ParseAuthorizationParameters reads the parameters from a query string.
func ParseAuthorizationParameters(q url.Values) *AuthorizationParameters {
	return &AuthorizationParameters{
		ResponseType: ResponseType(q.Get("response_type")),
		ClientID:     q.Get("client_id"),
		RedirectURI:  q.Get("redirect_uri"),
		State:        q.Get("state"),
	}
}

// Validate checks presence and shape only; the client registry check
// happens in the authorization service.
func (p *AuthorizationParameters) Validate() error {
	if p.ResponseType != CodeResponseType {
		return invalid(ErrInvalidResponseType)
	}
	if strings.TrimSpace(p.ClientID) == "" {
		return invalid(ErrMissingClientID)
	}
	if strings.TrimSpace(p.RedirectURI) == "" {
		return invalid(ErrInvalidRedirectURI)
	}
	u, err := url.Parse(p.RedirectURI)
	if err != nil || !u.IsAbs() || u.Fragment != "" {
		return invalid(ErrInvalidRedirectURI)
	}
	return nil
}

func invalid(err error) error {
	return apperrors.Mark(fmt.Errorf("%w", err), apperrors.ErrInvalidRequest)
}
