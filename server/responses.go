package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"

	reasonInternal = apperrors.ReasonInternal

	maxBodyBytes = 1 << 20
)

// errorBody is the uniform error body of the JSON API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// oauthErrorBody is the token endpoint error body.
type oauthErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}

func writeErrorMessage(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, errorBody{Error: reason, Message: message})
}

// writeError maps an error kind to its status and uniform body. Server
// errors are logged and replaced with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("request failed")
		message = http.StatusText(status)
	}
	writeErrorMessage(w, status, apperrors.Reason(err), message)
}

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, oauthErrorBody{Error: errorCode, ErrorDescription: description})
}

// decodeJSON reads a bounded JSON body into v. Failures are InvalidRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Mark(errors.Wrap(err, "decode request body"), apperrors.ErrInvalidRequest)
	}
	return nil
}
