package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/users"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an identity from {username?, email, password, name, country}.
func (s *Server) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg users.Registration
		if err := decodeJSON(w, r, &reg); err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.auth.Register(r.Context(), reg)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// Login checks credentials and sets the session cookie.
func (s *Server) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		session, err := s.auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrUnauthenticated) {
				writeText(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			writeError(w, r, err)
			return
		}

		s.setSessionCookie(w, r, session)
		writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful"})
	}
}

// Logout deletes the session named by the cookie, if any, and clears it.
func (s *Server) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
				writeError(w, r, err)
				return
			}
		}
		s.clearSessionCookie(w, r)
		log.Debug().Str("request_id", requestIDFromContext(r.Context())).Msg("logged out")
		writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
	}
}

// NotFoundHandler handles 404 errors
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, apperrors.ReasonNotFound, "Not found")
	}
}
