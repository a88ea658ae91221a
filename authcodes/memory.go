package authcodes

import (
	"context"
	"sync"
	"time"
)

var _ Repo = (*MemoryRepo)(nil)

// MemoryRepo keeps codes in process. Only suitable for a single replica.
type MemoryRepo struct {
	codes map[string]Entry
	mutex sync.Mutex
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{codes: make(map[string]Entry)}
}

func (r *MemoryRepo) Insert(_ context.Context, code string, entry *Entry) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.codes[code]; exists {
		return ErrCodeExists
	}
	r.codes[code] = *entry
	return nil
}

func (r *MemoryRepo) Redeem(_ context.Context, code, clientID, redirectURI string, now time.Time) (*Entry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, ok := r.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	if entry.Expired(now) {
		delete(r.codes, code)
		return nil, ErrCodeNotFound
	}
	if !entry.matches(clientID, redirectURI) {
		return nil, ErrCodeNotFound
	}
	delete(r.codes, code)
	return &entry, nil
}

func (r *MemoryRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	removed := 0
	for code, entry := range r.codes {
		if entry.Expired(now) {
			delete(r.codes, code)
			removed++
		}
	}
	return removed, nil
}

// Len is the number of stored codes, expired or not.
func (r *MemoryRepo) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.codes)
}

func (r *MemoryRepo) Close() error { return nil }
