package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationList keeps revoked token IDs until their expiry. Expired entries
// are dropped lazily on lookup and on every Revoke.
type RevocationList struct {
	mu    sync.RWMutex
	until map[string]time.Time
	now   func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{until: make(map[string]time.Time), now: time.Now}
}

func (r *RevocationList) WithClock(now func() time.Time) *RevocationList {
	if now != nil {
		r.now = now
	}
	return r
}

func (r *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, exp := range r.until {
		if !now.Before(exp) {
			delete(r.until, id)
		}
	}
	if now.Before(until) {
		r.until[tokenID] = until
	}
	return nil
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exp, ok := r.until[tokenID]
	if !ok {
		return false, nil
	}
	return r.now().Before(exp), nil
}

// Len reports the number of tracked entries, expired or not.
func (r *RevocationList) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.until)
}
