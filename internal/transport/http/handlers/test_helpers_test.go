package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/application/caregiver"
	"github.com/jiayou/auth-service/internal/application/documents"
	"github.com/jiayou/auth-service/internal/domain"
	"github.com/jiayou/auth-service/internal/infrastructure/memory"
	"github.com/jiayou/auth-service/internal/infrastructure/security"
	"github.com/jiayou/auth-service/internal/transport/http/middleware"
	"github.com/jiayou/auth-service/internal/transport/http/response"
	"golang.org/x/crypto/bcrypt"
)

// -------------------------
// Test wiring (pure unit)
// -------------------------

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeObjectStore struct{}

func (fakeObjectStore) PresignUpload(_ context.Context, key, contentType string, ttl time.Duration) (documents.PresignedUpload, error) {
	return documents.PresignedUpload{
		URL:     "https://storage.test/" + key + "?sig=1",
		Method:  http.MethodPut,
		Headers: map[string]string{"Content-Type": contentType},
	}, nil
}

type testEnv struct {
	clock    *clock
	store    *memory.IdentityStore
	profiles *memory.ProfileStore
	authSvc  *auth.Service

	authH      *AuthHandler
	caregiverH *CaregiverHandler
	docH       *DocumentHandler
	authMW     func(http.Handler) http.Handler
	caregiver  func(http.Handler) http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.NewIdentityStore()
	profiles := memory.NewProfileStore()
	pub := memory.NewNoopPublisher(zerolog.Nop())

	issuer := security.NewJWTIssuer("handler-test-secret-0123456789abcdef", "jiayou-test").WithClock(clk.Now)
	revoked := memory.NewRevocationList().WithClock(clk.Now)

	authSvc := auth.NewService(store, security.NewBcryptHasher(bcrypt.MinCost), issuer, revoked, pub, auth.Config{
		AccessTTL: 30 * time.Minute,
	})
	cgSvc := caregiver.NewService(profiles, pub).WithClock(clk.Now)
	docSvc := documents.NewService(fakeObjectStore{}, 15*time.Minute).WithClock(clk.Now)

	return &testEnv{
		clock:    clk,
		store:    store,
		profiles: profiles,
		authSvc:  authSvc,

		authH:      NewAuthHandler(authSvc),
		caregiverH: NewCaregiverHandler(cgSvc),
		docH:       NewDocumentHandler(docSvc),
		authMW:     middleware.Auth(authSvc, response.WriteError),
		caregiver:  middleware.RequireRole(authSvc, domain.RoleCaregiver, response.WriteError),
	}
}

// protected wraps h with the bearer middleware, and with the caregiver role
// check when caregiverOnly is set.
func (e *testEnv) protected(h http.HandlerFunc, caregiverOnly bool) http.Handler {
	var next http.Handler = h
	if caregiverOnly {
		next = e.caregiver(next)
	}
	return e.authMW(next)
}

func (e *testEnv) register(t *testing.T, email, password, role string) {
	t.Helper()
	rr := do(t, http.HandlerFunc(e.authH.Register), http.MethodPost, "/auth/v1/register", "", map[string]any{
		"email": email, "password": password, "role": role,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d body=%s", email, rr.Code, rr.Body.String())
	}
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := do(t, http.HandlerFunc(e.authH.Token), http.MethodPost, "/token", "", map[string]any{
		"email": email, "password": password,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d body=%s", email, rr.Code, rr.Body.String())
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	mustReadJSON(t, rr.Body, &tok)
	if tok.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	return tok.AccessToken
}

// do sends a JSON request (body may be nil) with an optional bearer token.
func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		rdr = mustJSONBody(t, body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes JSON from r into out.
// It tries to decode directly into out.
// If that fails, it tries {"data": <out>} wrapper.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 {
		if err := json.Unmarshal(wrapped.Data, out); err != nil {
			t.Fatalf("decode wrapped.data failed; body=%s err=%v", string(raw), err)
		}
		return
	}

	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s", string(raw))
	}
}

func mustErrorBody(t *testing.T, rr *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v; body=%s", err, rr.Body.String())
	}
	return body
}
