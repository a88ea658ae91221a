package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
	"github.com/jrsteele09/go-enquiry-service/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyRequestID stores the request correlation id
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeySession stores the live login session, when there is one
	ContextKeySession ContextKey = "session"
)

// LoadSession resolves the session cookie and, when it names a live
// session, attaches it to the request context. It never rejects a request;
// handlers decide what a missing session means.
func (s *Server) LoadSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next(w, r)
			return
		}

		session, err := s.auth.Session(r.Context(), cookie.Value)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrUnauthenticated) {
				log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("session lookup failed")
			}
			next(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySession, session)
		next(w, r.WithContext(ctx))
	}
}

func sessionFromContext(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is case insensitive.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
