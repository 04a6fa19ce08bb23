package auth

import (
	"context"
	"time"

	"github.com/jiayou/auth-service/internal/domain"
)

// DefaultAccessTTL is the token lifetime when none is configured.
const DefaultAccessTTL = 30 * time.Minute

// dummyPassword is hashed once at construction. Login verifies against it
// when the email is unknown so both failure paths cost one hash verification.
const dummyPassword = "jiayou-timing-equalizer"

type Service struct {
	store   CredentialStore
	hasher  PasswordHasher
	issuer  TokenIssuer
	revoked RevocationList
	pub     EventPublisher

	accessTTL time.Duration
	dummyHash string
	audit     func(ctx context.Context, action string, fields map[string]string)
	onError   func(ctx context.Context, action string, err error)
}

type Config struct {
	AccessTTL time.Duration
}

func NewService(
	store CredentialStore,
	hasher PasswordHasher,
	issuer TokenIssuer,
	revoked RevocationList,
	pub EventPublisher,
	cfg Config,
) *Service {
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	dummy, _ := hasher.Hash(dummyPassword)

	return &Service{
		store:   store,
		hasher:  hasher,
		issuer:  issuer,
		revoked: revoked,
		pub:     pub,

		accessTTL: ttl,
		dummyHash: dummy,
		audit:     func(context.Context, string, map[string]string) {},
		onError:   func(context.Context, string, error) {},
	}
}

// WithAudit installs a sink for business audit events.
func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithErrorLog installs a sink for failures that are hidden from callers
// (detailed token errors, best-effort publish failures).
func (s *Service) WithErrorLog(fn func(ctx context.Context, action string, err error)) *Service {
	if fn != nil {
		s.onError = fn
	}
	return s
}

// AccessTTL is the configured token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// LoginResult is the token output for handlers/DTO mapping.
type LoginResult struct {
	Identity    domain.Identity
	AccessToken string
	TokenType   string // "bearer"
	ExpiresAt   time.Time
	ExpiresIn   int64 // seconds
}
