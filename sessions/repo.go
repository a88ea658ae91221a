package sessions

import (
	"context"
	"time"
)

// Repo stores login sessions. Get returns ErrSessionNotFound for unknown ids;
// expiry is checked by the caller so drivers without native TTLs behave the
// same as those with them.
type Repo interface {
	Upsert(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	// DeleteExpired removes sessions that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
