// Package context carries request metadata below the HTTP layer: the request
// ID for log correlation and the client IP for audit records and throttling.
package context

import "context"

type metaKey struct{}

type requestMeta struct {
	requestID string
	clientIP  string
}

func metaFrom(ctx context.Context) requestMeta {
	if ctx == nil {
		return requestMeta{}
	}
	m, _ := ctx.Value(metaKey{}).(requestMeta)
	return m
}

func WithRequestID(ctx context.Context, id string) context.Context {
	m := metaFrom(ctx)
	m.requestID = id
	return context.WithValue(ctx, metaKey{}, m)
}

// GetRequestID returns "" when no ID was attached.
func GetRequestID(ctx context.Context) string {
	return metaFrom(ctx).requestID
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	m := metaFrom(ctx)
	m.clientIP = ip
	return context.WithValue(ctx, metaKey{}, m)
}

func GetClientIP(ctx context.Context) string {
	return metaFrom(ctx).clientIP
}
