package auth

import (
	"context"

	"github.com/jiayou/auth-service/internal/domain"
)

// Logout revokes the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, id, err := s.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if s.revoked == nil || claims.ID == "" {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	s.audit(ctx, "logout", map[string]string{"identity_id": id.ID})
	return nil
}
