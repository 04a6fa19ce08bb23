package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jiayou/auth-service/internal/application/caregiver"
	"github.com/jiayou/auth-service/internal/domain"
)

type ProfileStore struct {
	mu   sync.RWMutex
	rows map[string]caregiver.Profile
	now  func() time.Time
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{rows: make(map[string]caregiver.Profile), now: time.Now}
}

func (s *ProfileStore) UpsertProfile(ctx context.Context, identityID string, p domain.CaregiverProfile) (caregiver.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[identityID]
	if !ok {
		row = caregiver.Profile{IdentityID: identityID, Status: caregiver.CheckNotStarted}
	}
	row.Profile = p
	row.UpdatedAt = s.now().UTC()
	s.rows[identityID] = row
	return row, nil
}

func (s *ProfileStore) SetCheckStatus(ctx context.Context, identityID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[identityID]
	if !ok {
		row = caregiver.Profile{IdentityID: identityID}
	}
	row.Status = status
	row.UpdatedAt = s.now().UTC()
	s.rows[identityID] = row
	return nil
}

// Get is used by tests and the dev tool.
func (s *ProfileStore) Get(identityID string) (caregiver.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[identityID]
	return row, ok
}
