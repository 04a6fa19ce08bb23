package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appCtx "github.com/jiayou/auth-service/internal/pkg/context"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	}))

	t.Run("keeps client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "abc-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if seen != "abc-123" || rr.Header().Get(HeaderXRequestID) != "abc-123" {
			t.Fatalf("expected abc-123, ctx=%q header=%q", seen, rr.Header().Get(HeaderXRequestID))
		}
	})

	t.Run("generates when missing or oversized", func(t *testing.T) {
		for _, in := range []string{"", strings.Repeat("x", maxRequestIDLen+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if in != "" {
				req.Header.Set(HeaderXRequestID, in)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if seen == "" || seen == in || len(seen) != 36 {
				t.Fatalf("expected generated uuid, got %q", seen)
			}
			if rr.Header().Get(HeaderXRequestID) != seen {
				t.Fatalf("header/context mismatch")
			}
		}
	})
}

func TestRequestID_StoresClientIP(t *testing.T) {
	t.Parallel()

	var ip string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = appCtx.GetClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:40000"
	h.ServeHTTP(httptest.NewRecorder(), req)
	if ip != "192.0.2.10" {
		t.Fatalf("expected remote addr host, got %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if ip != "10.0.0.1" {
		t.Fatalf("expected last forwarded hop, got %q", ip)
	}
}
