package auth

import apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"

var (
	ErrInvalidCredentials = apperrors.Wrapf(apperrors.ErrUnauthenticated, "invalid credentials")
	ErrNoSession          = apperrors.Wrapf(apperrors.ErrUnauthenticated, "no authenticated session")
	ErrSessionExpired     = apperrors.Wrapf(apperrors.ErrUnauthenticated, "session expired")
	ErrUnknownClient      = apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown client")
	ErrRedirectNotAllowed = apperrors.Wrapf(apperrors.ErrInvalidRequest, "redirect_uri is not registered for client")
	ErrClientAuthFailed   = apperrors.Wrapf(apperrors.ErrInvalidGrant, "client authentication failed")
	ErrMissingToken       = apperrors.Wrapf(apperrors.ErrUnauthenticated, "missing bearer token")
	ErrUnknownSubject     = apperrors.Wrapf(apperrors.ErrInvalidToken, "token subject no longer exists")
)
