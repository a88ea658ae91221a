package server

import (
	"net/http"

	"github.com/jrsteele09/go-enquiry-service/internal/config"
	"github.com/jrsteele09/go-enquiry-service/sessions"
)

const sessionCookieName = "session_id"

// setSessionCookie sets the login session cookie. It lives no longer than
// the session itself.
func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	maxAge := int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(s.config.GetMaxSessionAge().Seconds())
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.env == config.EnvProd || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.env == config.EnvProd || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}
