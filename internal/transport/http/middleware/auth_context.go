package middleware

import (
	"context"

	"github.com/jiayou/auth-service/internal/domain"
)

type ctxKey string

const (
	ctxIdentity ctxKey = "identity"
	ctxToken    ctxKey = "access_token"
)

// WithIdentity stores the authenticated identity and the raw bearer token.
func WithIdentity(ctx context.Context, id domain.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, ctxIdentity, id)
	ctx = context.WithValue(ctx, ctxToken, token)
	return ctx
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	v, ok := ctx.Value(ctxIdentity).(domain.Identity)
	return v, ok && v.ID != ""
}

func TokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxToken).(string)
	return v, ok && v != ""
}
