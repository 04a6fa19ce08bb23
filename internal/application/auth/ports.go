package auth

import (
	"context"
	"time"

	"github.com/jiayou/auth-service/internal/domain"
)

/*
CredentialStore
---------------
Persistence port for identities.
Only describes WHAT the auth service needs, not HOW it's stored.
Lookups are case-insensitive on email; implementations return
domain.ErrIdentityNotFound when nothing matches.
*/
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (domain.Identity, error)
	Insert(ctx context.Context, id domain.Identity) (domain.Identity, error)

	// Profile flows (outside the login/authenticate path)
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.Identity, error)
	Deactivate(ctx context.Context, email string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2id. Verify never errors: a malformed stored hash is
simply a failed verification.
*/
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

/*
TokenIssuer
-----------
Issues and validates signed bearer tokens.
Validate returns domain.ErrUnauthorized (with the cause attached) for every
failure.
*/
type TokenClaims struct {
	Subject   string
	ID        string
	Active    bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(subject string, active bool, ttl time.Duration) (IssuedToken, error)
	Validate(token string) (TokenClaims, error)
}

/*
RevocationList
--------------
Token IDs revoked before their natural expiry (logout).
Entries only need to live until the token would have expired anyway.
*/
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

/*
EventPublisher
--------------
Publishes identity lifecycle events to the broker.
*/
type EventPublisher interface {
	PublishIdentityRegistered(ctx context.Context, evt IdentityRegisteredEvent) error
	PublishIdentityDeactivated(ctx context.Context, evt IdentityDeactivatedEvent) error
}

type IdentityRegisteredEvent struct {
	IdentityID string `json:"identity_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Language   string `json:"language"`
}

type IdentityDeactivatedEvent struct {
	IdentityID string `json:"identity_id"`
	Email      string `json:"email"`
}
