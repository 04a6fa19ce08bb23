package middleware

import (
	"net/http"

	"github.com/jiayou/auth-service/internal/domain"
)

type Authorizer interface {
	Authorize(id domain.Identity, required domain.Role) error
}

// RequireRole admits only identities holding exactly the required role.
// Assumes Auth() middleware has already injected the identity.
func RequireRole(gate Authorizer, role domain.Role, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				// Middleware ordering issue (Auth not applied)
				writeErr(w, r, domain.ErrUnauthorized())
				return
			}

			if err := gate.Authorize(id, role); err != nil {
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
