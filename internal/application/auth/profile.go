package auth

import (
	"context"
	"strings"

	"github.com/jiayou/auth-service/internal/domain"
)

// UpdateProfile changes first/last name and language of the caller.
func (s *Service) UpdateProfile(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (domain.Identity, error) {
	if upd.Empty() {
		return id, nil
	}
	if upd.Language != nil && strings.TrimSpace(*upd.Language) == "" {
		return domain.Identity{}, domain.ErrInvalidField("language", "empty")
	}
	return s.store.UpdateProfile(ctx, id.Email, upd)
}

// Deactivate marks the caller inactive. Tokens already issued stop working on
// their next use because Authenticate re-reads the active flag.
func (s *Service) Deactivate(ctx context.Context, id domain.Identity) error {
	if err := s.store.Deactivate(ctx, id.Email); err != nil {
		return err
	}

	s.audit(ctx, "identity_deactivated", map[string]string{"identity_id": id.ID})

	if s.pub != nil {
		if err := s.pub.PublishIdentityDeactivated(ctx, IdentityDeactivatedEvent{
			IdentityID: id.ID,
			Email:      id.Email,
		}); err != nil {
			s.onError(ctx, "publish_identity_deactivated", err)
		}
	}
	return nil
}
