package auth

import (
	"context"

	"github.com/jiayou/auth-service/internal/domain"
)

// Authenticate validates a bearer token and re-resolves its subject.
// Only the subject claim is trusted; role and active status always come from
// the store, which makes deactivation effective on the next request.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	_, id, err := s.authenticate(ctx, token)
	return id, err
}

func (s *Service) authenticate(ctx context.Context, token string) (TokenClaims, domain.Identity, error) {
	token = trimBearer(token)
	if token == "" {
		return TokenClaims{}, domain.Identity{}, domain.ErrUnauthorized()
	}

	claims, err := s.issuer.Validate(token)
	if err != nil {
		s.onError(ctx, "authenticate", err)
		return TokenClaims{}, domain.Identity{}, domain.ErrUnauthorizedCause(err)
	}
	if claims.Subject == "" {
		return TokenClaims{}, domain.Identity{}, domain.ErrUnauthorized()
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Fail open: the identity check below still applies.
			s.onError(ctx, "revocation_lookup", err)
		} else if revoked {
			return TokenClaims{}, domain.Identity{}, domain.ErrUnauthorized()
		}
	}

	id, err := s.store.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if domain.Is(err, "identity_not_found") {
			return TokenClaims{}, domain.Identity{}, domain.ErrUnauthorized()
		}
		return TokenClaims{}, domain.Identity{}, err
	}
	if !id.Active {
		return TokenClaims{}, domain.Identity{}, domain.ErrUnauthorized()
	}

	return claims, id, nil
}

// Authorize enforces exact role match. A valid identity with the wrong role
// gets Forbidden, never Unauthorized.
func (s *Service) Authorize(id domain.Identity, required domain.Role) error {
	if !domain.IsValidRole(string(required)) {
		return domain.ErrForbidden()
	}
	if !id.HasRole(required) {
		return domain.ErrInsufficientRole(string(required))
	}
	return nil
}
