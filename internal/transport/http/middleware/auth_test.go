package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jiayou/auth-service/internal/domain"
)

// ---- fakes ----

type fakeGate struct {
	id     domain.Identity
	err    error
	calls  int
	gotTok string

	authzErr error
}

func (f *fakeGate) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	f.calls++
	f.gotTok = token
	return f.id, f.err
}

func (f *fakeGate) Authorize(id domain.Identity, required domain.Role) error {
	if f.authzErr != nil {
		return f.authzErr
	}
	if id.Role != required {
		return domain.ErrInsufficientRole(string(required))
	}
	return nil
}

type writeErrRecorder struct {
	calls int
	last  error
}

func (w *writeErrRecorder) fn(rw http.ResponseWriter, _ *http.Request, err error) {
	w.calls++
	w.last = err
	rw.WriteHeader(http.StatusTeapot)
}

// next handler checks context injection
type nextRecorder struct {
	calls    int
	gotID    domain.Identity
	gotToken string
}

func (n *nextRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.calls++
	n.gotID, _ = IdentityFromContext(r.Context())
	n.gotToken, _ = TokenFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func runAuthMW(t *testing.T, gate Authenticator, req *http.Request) (*httptest.ResponseRecorder, *writeErrRecorder, *nextRecorder) {
	t.Helper()

	rr := httptest.NewRecorder()
	we := &writeErrRecorder{}
	nx := &nextRecorder{}

	Auth(gate, we.fn)(nx).ServeHTTP(rr, req)
	return rr, we, nx
}

var family = domain.Identity{ID: "u1", Email: "a@x.com", Role: domain.RoleFamily, Active: true}

// ---- tests ----

func TestAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{id: family}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)

	_, we, nx := runAuthMW(t, gate, req)

	if we.calls != 1 || !domain.Is(we.last, "unauthorized") {
		t.Fatalf("expected unauthorized, got calls=%d err=%v", we.calls, we.last)
	}
	if gate.calls != 0 {
		t.Fatalf("gate must not be called without a token")
	}
	if nx.calls != 0 {
		t.Fatalf("next must not run")
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"Token abc", "Bearer", "Bearer    ", "abc"} {
		gate := &fakeGate{id: family}
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", h)

		_, we, nx := runAuthMW(t, gate, req)

		if !domain.Is(we.last, "unauthorized") {
			t.Fatalf("header %q: expected unauthorized, got %v", h, we.last)
		}
		if gate.calls != 0 || nx.calls != 0 {
			t.Fatalf("header %q: gate=%d next=%d", h, gate.calls, nx.calls)
		}
	}
}

func TestAuth_GateRejects(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{err: domain.ErrUnauthorizedCause(errors.New("expired"))}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")

	_, we, nx := runAuthMW(t, gate, req)

	if !domain.Is(we.last, "unauthorized") {
		t.Fatalf("expected unauthorized, got %v", we.last)
	}
	if nx.calls != 0 {
		t.Fatalf("next must not run")
	}
}

func TestAuth_PassesInfrastructureErrorsThrough(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{err: domain.ErrDBUnavailable(errors.New("down"))}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")

	_, we, _ := runAuthMW(t, gate, req)

	if !domain.Is(we.last, "db_unavailable") {
		t.Fatalf("expected db_unavailable, got %v", we.last)
	}
}

func TestAuth_Success_InjectsIdentityAndToken(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{id: family}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer  tok-123 ")

	rr, we, nx := runAuthMW(t, gate, req)

	if we.calls != 0 {
		t.Fatalf("unexpected error: %v", we.last)
	}
	if rr.Code != http.StatusOK || nx.calls != 1 {
		t.Fatalf("expected next to run, code=%d", rr.Code)
	}
	if gate.gotTok != "tok-123" {
		t.Fatalf("expected trimmed token, got %q", gate.gotTok)
	}
	if nx.gotID.ID != "u1" || nx.gotToken != "tok-123" {
		t.Fatalf("context not populated: %+v %q", nx.gotID, nx.gotToken)
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{}
	run := func(ctx context.Context) (*writeErrRecorder, *nextRecorder) {
		we := &writeErrRecorder{}
		nx := &nextRecorder{}
		req := httptest.NewRequest(http.MethodPost, "/caregivers/v1/profile", nil).WithContext(ctx)
		RequireRole(gate, domain.RoleCaregiver, we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)
		return we, nx
	}

	t.Run("no identity in context", func(t *testing.T) {
		we, nx := run(context.Background())
		if !domain.Is(we.last, "unauthorized") || nx.calls != 0 {
			t.Fatalf("expected unauthorized, got %v", we.last)
		}
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		we, nx := run(WithIdentity(context.Background(), family, "tok"))
		if !domain.Is(we.last, "forbidden") || nx.calls != 0 {
			t.Fatalf("expected forbidden, got %v", we.last)
		}
		if domain.KindOf(we.last) != domain.KindForbidden {
			t.Fatalf("expected forbidden kind, got %s", domain.KindOf(we.last))
		}
	})

	t.Run("matching role passes", func(t *testing.T) {
		cg := domain.Identity{ID: "c1", Role: domain.RoleCaregiver, Active: true}
		we, nx := run(WithIdentity(context.Background(), cg, "tok"))
		if we.calls != 0 || nx.calls != 1 {
			t.Fatalf("expected pass, err=%v", we.last)
		}
	})
}

func TestIdentityFromContext_Empty(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatalf("expected no identity")
	}
	if _, ok := IdentityFromContext(WithIdentity(context.Background(), domain.Identity{}, "")); ok {
		t.Fatalf("identity without id must not count")
	}
	if _, ok := TokenFromContext(context.Background()); ok {
		t.Fatalf("expected no token")
	}
}
