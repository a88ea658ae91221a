package server

import (
	"fmt"
	"net/http"
)

// OAuthCallbackHandler is a diagnostic redirect target that echoes the code
// and state it was sent. Useful for exercising the flow by hand.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			writeText(w, http.StatusBadRequest, "Authorization code is missing")
			return
		}

		state := r.URL.Query().Get("state")
		if state == "" {
			state = "No state"
		}
		writeText(w, http.StatusOK, fmt.Sprintf("Authorization code received: %s. State: %s", code, state))
	}
}
