package context

import (
	"context"
	"testing"
)

func TestMeta_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "rid-42")
	ctx = WithClientIP(ctx, "203.0.113.7")

	if got := GetRequestID(ctx); got != "rid-42" {
		t.Fatalf("expected rid-42, got %q", got)
	}
	if got := GetClientIP(ctx); got != "203.0.113.7" {
		t.Fatalf("expected client ip, got %q", got)
	}

	// overwriting one field keeps the other
	ctx = WithRequestID(ctx, "rid-43")
	if GetRequestID(ctx) != "rid-43" || GetClientIP(ctx) != "203.0.113.7" {
		t.Fatalf("unexpected meta after overwrite: %q %q", GetRequestID(ctx), GetClientIP(ctx))
	}
}

func TestMeta_Missing(t *testing.T) {
	t.Parallel()

	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
	//nolint:staticcheck // nil context is tolerated
	if got := GetClientIP(nil); got != "" {
		t.Fatalf("expected empty ip for nil ctx, got %q", got)
	}
	ctx := context.WithValue(context.Background(), "request_id", "spoofed") //nolint:staticcheck
	if got := GetRequestID(ctx); got != "" {
		t.Fatalf("expected empty id for foreign key, got %q", got)
	}
}
