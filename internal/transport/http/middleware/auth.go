package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jiayou/auth-service/internal/domain"
)

// Authenticator resolves a bearer token to an active identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth verifies Authorization: Bearer <access_token> and injects the identity
// and raw token into the request context. Every failure is the same 401.
func Auth(gate Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, reason := bearerToken(r)
			if reason != "" {
				TokenRejectionsTotal.WithLabelValues(reason).Inc()
				writeErr(w, r, domain.ErrUnauthorized())
				return
			}

			id, err := gate.Authenticate(r.Context(), raw)
			if err != nil {
				if domain.KindOf(err) == domain.KindAuth {
					TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				}
				writeErr(w, r, err)
				return
			}

			ctx := WithIdentity(r.Context(), id, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken returns the token, or a non-empty rejection reason.
func bearerToken(r *http.Request) (string, string) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", "missing"
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "malformed"
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", "malformed"
	}
	return raw, ""
}
