package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

const sessionIDLength = 32

var ErrSessionNotFound = apperrors.Wrapf(apperrors.ErrUnauthenticated, "session not found")

// Session binds a browser (via the session_id cookie) to exactly one
// authenticated username.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NewID returns a 256 bit random, URL safe session identifier.
func NewID() (string, error) {
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate session id")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
