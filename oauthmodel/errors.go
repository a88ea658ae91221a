package oauthmodel

import "errors"

var (
	ErrInvalidResponseType  = errors.New("unsupported response type")
	ErrMissingClientID      = errors.New("client_id is required")
	ErrInvalidRedirectURI   = errors.New("invalid or no redirect uri")
	ErrUnsupportedGrantType = errors.New("unsupported grant type")
	ErrMissingCode          = errors.New("code is required")
)

// OAuth2 error codes written in token endpoint error bodies.
const (
	ErrorInvalidRequest = "invalid_request"
	ErrorInvalidGrant   = "invalid_grant"
	ErrorServerError    = "server_error"
)
