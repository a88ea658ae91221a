package authcodes

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-enquiry-service/internal/errors"
)

var (
	// ErrCodeNotFound covers unknown, expired, already redeemed and
	// mismatching codes alike so callers can't tell which check failed.
	ErrCodeNotFound = apperrors.Wrapf(apperrors.ErrInvalidGrant, "authorization code not found")
	// ErrCodeExists is returned instead of overwriting an existing entry.
	ErrCodeExists = apperrors.Wrapf(apperrors.ErrInternal, "authorization code collision")
)

// Entry is what an authorization code is bound to.
type Entry struct {
	ClientID    string    `json:"client_id"`
	RedirectURI string    `json:"redirect_uri"`
	Subject     string    `json:"subject"`
	Scope       string    `json:"scope"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

func (e *Entry) matches(clientID, redirectURI string) bool {
	return e.ClientID == clientID && e.RedirectURI == redirectURI
}

// Repo stores issued authorization codes.
type Repo interface {
	// Insert stores a new code. It never overwrites: an existing code yields
	// ErrCodeExists.
	Insert(ctx context.Context, code string, entry *Entry) error

	// Redeem atomically checks and deletes a code. The entry is returned and
	// removed only if it exists, has not expired at now, and was issued to
	// clientID for redirectURI. Anything else is ErrCodeNotFound and a
	// mismatching attempt leaves the code in place for its rightful owner.
	Redeem(ctx context.Context, code, clientID, redirectURI string, now time.Time) (*Entry, error)

	// DeleteExpired removes codes that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	Close() error
}

// NewCode returns an opaque, URL safe code carrying length random bytes.
func NewCode(length int) (string, error) {
	if length < 16 {
		return "", errors.Errorf("code length %d is below 128 bits", length)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate authorization code")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashCode is the storage key for a code in shared stores, so a leaked
// store dump can't be replayed against /token.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
