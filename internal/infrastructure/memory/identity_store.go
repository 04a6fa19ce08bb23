package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jiayou/auth-service/internal/domain"
)

// IdentityStore is the in-memory credential store used in dev and tests.
type IdentityStore struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Identity
	now     func() time.Time
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		byEmail: make(map[string]domain.Identity),
		now:     time.Now,
	}
}

func (r *IdentityStore) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Identity{}, domain.ErrIdentityNotFound()
	}
	return id, nil
}

func (r *IdentityStore) Insert(ctx context.Context, id domain.Identity) (domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id.ID == "" {
		return domain.Identity{}, domain.ErrInternal(nil)
	}

	key := domain.NormalizeEmail(id.Email)
	if _, exists := r.byEmail[key]; exists {
		return domain.Identity{}, domain.ErrEmailAlreadyExists()
	}

	now := r.now().UTC()
	id.Email = key
	id.CreatedAt = now
	id.UpdatedAt = now
	r.byEmail[key] = id
	return id, nil
}

func (r *IdentityStore) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.NormalizeEmail(email)
	id, ok := r.byEmail[key]
	if !ok {
		return domain.Identity{}, domain.ErrIdentityNotFound()
	}
	id = upd.Apply(id)
	id.UpdatedAt = r.now().UTC()
	r.byEmail[key] = id
	return id, nil
}

func (r *IdentityStore) Deactivate(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.NormalizeEmail(email)
	id, ok := r.byEmail[key]
	if !ok {
		return domain.ErrIdentityNotFound()
	}
	id.Active = false
	id.UpdatedAt = r.now().UTC()
	r.byEmail[key] = id
	return nil
}
