package sessions

import (
	"context"
	"sync"
	"time"
)

var _ Repo = (*MemoryRepo)(nil)

type MemoryRepo struct {
	sessions map[string]Session
	lock     sync.RWMutex
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sessions: make(map[string]Session)}
}

func (r *MemoryRepo) Upsert(_ context.Context, session *Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, sessionID string) (*Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *MemoryRepo) Delete(_ context.Context, sessionID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}
