package oauthmodel

import (
	"strings"
)

type GrantType string

const AuthorizationCodeGrantType GrantType = "authorization_code"

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /token endpoint, either as
// JSON or as application/x-www-form-urlencoded.
type TokenRequest struct {
	// GrantType selects the exchange being performed.
	// Required: Yes
	// Example: "authorization_code" (the only supported value)
	GrantType GrantType `json:"grant_type"`

	// Code is the authorization code received from the authorization endpoint.
	// Required: Yes
	// Example: "SplxlOBeZQQYbYS6WxSbIA"
	// Usage: Exchanged once for a token, then becomes invalid
	Code string `json:"code"`

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes
	// Must equal the client_id the code was issued to
	ClientID string `json:"client_id"`

	// RedirectURI must equal the redirect_uri used at /authorize.
	// Required: Yes
	RedirectURI string `json:"redirect_uri"`

	// ClientSecret is the secret credential for confidential clients.
	// Required: Only when the server requires client secrets
	// Security: Never log or expose this value
	ClientSecret string `json:"client_secret,omitempty"`
}

// Validate checks that every required field is present and the grant type
// is supported.
func (r *TokenRequest) Validate() error {
	if r.GrantType != AuthorizationCodeGrantType {
		return invalid(ErrUnsupportedGrantType)
	}
	if strings.TrimSpace(r.Code) == "" {
		return invalid(ErrMissingCode)
	}
	if strings.TrimSpace(r.ClientID) == "" {
		return invalid(ErrMissingClientID)
	}
	if strings.TrimSpace(r.RedirectURI) == "" {
		return invalid(ErrInvalidRedirectURI)
	}
	return nil
}
