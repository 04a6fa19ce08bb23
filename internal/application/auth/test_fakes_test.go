package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jiayou/auth-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeStore struct {
	mu sync.Mutex

	byEmail map[string]domain.Identity

	// injected errors (if set, method returns error)
	findErr       error
	insertErr     error
	updateErr     error
	deactivateErr error

	// record calls
	finds       int
	deactivated []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: map[string]domain.Identity{}}
}

func (f *fakeStore) put(id domain.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[domain.NormalizeEmail(id.Email)] = id
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finds++
	if f.findErr != nil {
		return domain.Identity{}, f.findErr
	}
	id, ok := f.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Identity{}, domain.ErrIdentityNotFound()
	}
	return id, nil
}

func (f *fakeStore) Insert(ctx context.Context, id domain.Identity) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return domain.Identity{}, f.insertErr
	}
	if _, ok := f.byEmail[id.Email]; ok {
		return domain.Identity{}, domain.ErrEmailAlreadyExists()
	}
	f.byEmail[id.Email] = id
	return id, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return domain.Identity{}, f.updateErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return domain.Identity{}, domain.ErrIdentityNotFound()
	}
	id = upd.Apply(id)
	f.byEmail[email] = id
	return id, nil
}

func (f *fakeStore) Deactivate(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return domain.ErrIdentityNotFound()
	}
	id.Active = false
	f.byEmail[email] = id
	f.deactivated = append(f.deactivated, email)
	return nil
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)

	mu       sync.Mutex
	verifies int
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Verify(password, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return hash == "hash:"+password
}

// fakeIssuer keeps issued tokens in memory and checks expiry against an
// adjustable clock.
type fakeIssuer struct {
	mu  sync.Mutex
	now time.Time
	seq int

	issued map[string]TokenClaims
	signFn func(subject string) error
}

func newFakeIssuer(now time.Time) *fakeIssuer {
	return &fakeIssuer{now: now, issued: map[string]TokenClaims{}}
}

func (i *fakeIssuer) advance(d time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.now = i.now.Add(d)
}

func (i *fakeIssuer) Issue(subject string, active bool, ttl time.Duration) (IssuedToken, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.signFn != nil {
		if err := i.signFn(subject); err != nil {
			return IssuedToken{}, err
		}
	}
	i.seq++
	jti := fmt.Sprintf("jti-%d", i.seq)
	tok := "tok." + jti
	c := TokenClaims{Subject: subject, ID: jti, Active: active, IssuedAt: i.now, ExpiresAt: i.now.Add(ttl)}
	i.issued[tok] = c
	return IssuedToken{Token: tok, ID: jti, ExpiresAt: c.ExpiresAt}, nil
}

func (i *fakeIssuer) Validate(token string) (TokenClaims, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	c, ok := i.issued[token]
	if !ok {
		return TokenClaims{}, domain.ErrUnauthorizedCause(errors.New("unknown token"))
	}
	if !i.now.Before(c.ExpiresAt) {
		return TokenClaims{}, domain.ErrUnauthorizedCause(errors.New("token expired"))
	}
	return c, nil
}

// forge registers a token with arbitrary claims, e.g. for a subject that is
// not in the store.
func (i *fakeIssuer) forge(token string, c TokenClaims) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.issued[token] = c
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time

	revokeErr error
	lookupErr error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: map[string]time.Time{}}
}

func (r *fakeRevocations) Revoke(ctx context.Context, id string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revokeErr != nil {
		return r.revokeErr
	}
	r.revoked[id] = until
	return nil
}

func (r *fakeRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return false, r.lookupErr
	}
	_, ok := r.revoked[id]
	return ok, nil
}

type fakePublisher struct {
	mu sync.Mutex

	registered  []IdentityRegisteredEvent
	deactivated []IdentityDeactivatedEvent
	err         error
}

func (p *fakePublisher) PublishIdentityRegistered(ctx context.Context, evt IdentityRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.registered = append(p.registered, evt)
	return nil
}

func (p *fakePublisher) PublishIdentityDeactivated(ctx context.Context, evt IdentityDeactivatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.deactivated = append(p.deactivated, evt)
	return nil
}

/*
Service constructor for tests
*/

type testDeps struct {
	store   *fakeStore
	hasher  *fakeHasher
	issuer  *fakeIssuer
	revoked *fakeRevocations
	pub     *fakePublisher

	mu     sync.Mutex
	audits []auditEntry
	errs   []string
}

func (d *testDeps) auditActions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.audits))
	for _, a := range d.audits {
		out = append(out, a.action)
	}
	return out
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSvcForTest(t *testing.T) (*Service, *testDeps) {
	t.Helper()

	d := &testDeps{
		store:   newFakeStore(),
		hasher:  &fakeHasher{},
		issuer:  newFakeIssuer(testNow),
		revoked: newFakeRevocations(),
		pub:     &fakePublisher{},
	}

	svc := NewService(d.store, d.hasher, d.issuer, d.revoked, d.pub, Config{AccessTTL: 30 * time.Minute}).
		WithAudit(func(ctx context.Context, action string, fields map[string]string) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.audits = append(d.audits, auditEntry{action: action, fields: fields})
		}).
		WithErrorLog(func(ctx context.Context, action string, err error) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.errs = append(d.errs, action+": "+err.Error())
		})

	return svc, d
}

func seedIdentity(d *testDeps, email, password string, role domain.Role) domain.Identity {
	id := domain.Identity{
		ID:           "id-" + strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: "hash:" + password,
		Role:         role,
		Language:     domain.DefaultLanguage,
		Active:       true,
	}
	d.store.put(id)
	return id
}
