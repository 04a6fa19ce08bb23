package auth

import (
	"context"
	"strings"

	"github.com/jiayou/auth-service/internal/domain"
)

// Login authenticates an identity and issues a bearer token.
// IMPORTANT: every failure returns the same ErrInvalidCredentials so the
// response never reveals whether the email exists.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	id, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if !domain.Is(err, "identity_not_found") {
			// Store outage: still answer with the generic error, keep the cause for logs.
			s.onError(ctx, "login", err)
		}
		// Burn one verification so unknown emails are not faster than wrong passwords.
		_ = s.hasher.Verify(password, s.dummyHash)
		s.audit(ctx, "login_failed", map[string]string{"email": email, "reason": "unknown_email"})
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if !s.hasher.Verify(password, id.PasswordHash) {
		s.audit(ctx, "login_failed", map[string]string{"email": email, "reason": "bad_password"})
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if !id.Active {
		s.audit(ctx, "login_failed", map[string]string{"email": email, "reason": "inactive"})
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	tok, err := s.issuer.Issue(id.Email, id.Active, s.accessTTL)
	if err != nil {
		return LoginResult{}, domain.ErrTokenSignFailed(err)
	}

	s.audit(ctx, "login_success", map[string]string{"email": id.Email, "identity_id": id.ID})

	return LoginResult{
		Identity:    id,
		AccessToken: tok.Token,
		TokenType:   "bearer",
		ExpiresAt:   tok.ExpiresAt,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

// trimBearer accepts either a raw token or an "Authorization" header value.
func trimBearer(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
