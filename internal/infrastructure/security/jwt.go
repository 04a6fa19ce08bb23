package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/domain"
)

var errMissingSubject = errors.New("token has no subject")

// JWTIssuer signs and validates HS256 access tokens.
type JWTIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTIssuer(secret string, issuer string) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for iat/exp and for validation.
func (s *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	if now != nil {
		s.now = now
	}
	return s
}

type accessClaims struct {
	Active bool `json:"act"`
	jwt.RegisteredClaims
}

func (s *JWTIssuer) Issue(subject string, active bool, ttl time.Duration) (auth.IssuedToken, error) {
	now := s.now()
	jti := uuid.NewString()
	claims := accessClaims{
		Active: active,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return auth.IssuedToken{}, domain.ErrTokenSignFailed(err)
	}
	return auth.IssuedToken{Token: signed, ID: jti, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate rejects anything that is not an unexpired HS256 token signed with
// our secret. The jwt error is attached as cause for logging only.
func (s *JWTIssuer) Validate(token string) (auth.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return auth.TokenClaims{}, domain.ErrUnauthorizedCause(err)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return auth.TokenClaims{}, domain.ErrUnauthorized()
	}
	if claims.Subject == "" {
		return auth.TokenClaims{}, domain.ErrUnauthorizedCause(errMissingSubject)
	}

	out := auth.TokenClaims{
		Subject: claims.Subject,
		ID:      claims.ID,
		Active:  claims.Active,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
