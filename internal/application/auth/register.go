package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jiayou/auth-service/internal/domain"
)

type RegisterInput struct {
	Email     string
	Password  string
	Role      string
	Language  string
	FirstName string
	LastName  string
}

// Register creates an identity. The plaintext password is hashed before it
// reaches the store and is not kept anywhere.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.Identity, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return domain.Identity{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return domain.Identity{}, domain.ErrMissingField("password")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	lang := strings.TrimSpace(in.Language)
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.Identity{}, err
		}
		return domain.Identity{}, domain.ErrHashFailed(err)
	}

	created, err := s.store.Insert(ctx, domain.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Language:     lang,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Active:       true,
	})
	if err != nil {
		return domain.Identity{}, err
	}

	s.audit(ctx, "identity_registered", map[string]string{"identity_id": created.ID, "role": string(created.Role)})

	if s.pub != nil {
		if err := s.pub.PublishIdentityRegistered(ctx, IdentityRegisteredEvent{
			IdentityID: created.ID,
			Email:      created.Email,
			Role:       string(created.Role),
			Language:   created.Language,
		}); err != nil {
			// Registration already committed; the event is best-effort.
			s.onError(ctx, "publish_identity_registered", err)
		}
	}

	return created, nil
}
