package server

import (
	"mime"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/oauthmodel"
)

// Authorize issues an authorization code to the logged-in user and
// redirects back to the client. Failures are plain text: 401 without a
// session, 400 for bad parameters.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := oauthmodel.ParseAuthorizationParameters(r.URL.Query())

		redirectURL, err := s.auth.Authorize(r.Context(), sessionFromContext(r.Context()), params)
		if err != nil {
			switch apperrors.StatusCode(err) {
			case http.StatusUnauthorized:
				writeText(w, http.StatusUnauthorized, "User not authenticated. Please log in first.")
			case http.StatusBadRequest:
				log.Debug().Err(err).Str("client_id", params.ClientID).Msg("authorization request rejected")
				writeText(w, http.StatusBadRequest, "Invalid request parameters")
			default:
				log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("authorize failed")
				writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// Token exchanges an authorization code for an access token.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseTokenRequest(w, r)
		if err != nil {
			log.Debug().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("unreadable token request")
			writeJSONError(w, oauthmodel.ErrorInvalidRequest, "", http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.auth.Token(r.Context(), req)
		if err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrInvalidRequest):
				writeJSONError(w, oauthmodel.ErrorInvalidRequest, "", http.StatusBadRequest)
			case apperrors.Is(err, apperrors.ErrInvalidGrant):
				// Which check failed is deliberately not reported.
				writeJSONError(w, oauthmodel.ErrorInvalidGrant, "", http.StatusBadRequest)
			default:
				log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("token exchange failed")
				writeJSONError(w, oauthmodel.ErrorServerError, "", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse)
	}
}

// parseTokenRequest accepts a JSON or form encoded body. Client credentials
// may also arrive through HTTP Basic auth.
func parseTokenRequest(w http.ResponseWriter, r *http.Request) (oauthmodel.TokenRequest, error) {
	var req oauthmodel.TokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := decodeJSON(w, r, &req); err != nil {
			return req, err
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return req, apperrors.Wrapf(apperrors.ErrInvalidRequest, "failed to parse form data")
		}
		req = oauthmodel.TokenRequest{
			GrantType:    oauthmodel.GrantType(r.PostForm.Get("grant_type")),
			Code:         r.PostForm.Get("code"),
			ClientID:     r.PostForm.Get("client_id"),
			RedirectURI:  r.PostForm.Get("redirect_uri"),
			ClientSecret: r.PostForm.Get("client_secret"),
		}
	}

	if id, secret, ok := r.BasicAuth(); ok {
		if req.ClientID != "" && req.ClientID != id {
			return req, apperrors.Wrapf(apperrors.ErrInvalidRequest, "client_id does not match basic credentials")
		}
		req.ClientID = id
		req.ClientSecret = secret
	}
	return req, nil
}

// UserInfo returns the profile of the token's subject.
func (s *Server) UserInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := bearerToken(r)
		if accessToken == "" {
			w.Header().Set("WWW-Authenticate", `Bearer`)
			writeText(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userInfo, err := s.auth.UserInfo(r.Context(), accessToken)
		if err != nil {
			if apperrors.StatusCode(err) == http.StatusUnauthorized {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeText(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("userinfo failed")
			writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}

		writeJSON(w, http.StatusOK, userInfo)
	}
}
