package service

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Permissions = make(domain.Permissions, len(u.Permissions))
	for k, v := range u.Permissions {
		clone.Permissions[k] = v
	}
	clone.RecentIPs = append([]string(nil), u.RecentIPs...)
	return &clone
}

// ── User repository ──

type stubUserRepo struct {
	mu           sync.Mutex
	users        map[string]*domain.User
	createErr    error
	updateErr    error
	findEmailErr error
	deletes      []string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findEmailErr != nil {
		return nil, r.findEmailErr
	}
	for _, u := range r.users {
		if u.Email == domain.NormalizeEmail(email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, id)
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Permissions(_ context.Context, id string) (domain.Permissions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u).Permissions, nil
}

// ── Token repository ──

type stubTokenRepo struct {
	mu        sync.Mutex
	tokens    map[string]*domain.VerificationToken // by id
	createErr error
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*domain.VerificationToken)}
}

func (r *stubTokenRepo) Create(_ context.Context, token *domain.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	clone := *token
	r.tokens[token.ID] = &clone
	return nil
}

func (r *stubTokenRepo) FindByHash(_ context.Context, hash string, purpose domain.TokenPurpose) (*domain.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash && t.Purpose == purpose {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrInvalidToken
}

func (r *stubTokenRepo) MarkConsumed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.ConsumedAt != nil {
		return domain.ErrTokenConsumed
	}
	now := time.Now().UTC()
	t.ConsumedAt = &now
	return nil
}

func (r *stubTokenRepo) DeleteForUser(_ context.Context, userID string, purpose domain.TokenPurpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *stubTokenRepo) outstanding(userID string, purpose domain.TokenPurpose) []*domain.VerificationToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.VerificationToken
	for _, t := range r.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out
}

// ── Approval repository ──

type stubApprovalRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.ApprovalEntry
}

func newStubApprovalRepo() *stubApprovalRepo {
	return &stubApprovalRepo{entries: make(map[string]*domain.ApprovalEntry)}
}

func (r *stubApprovalRepo) Enqueue(_ context.Context, entry *domain.ApprovalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *entry
	r.entries[entry.UserID] = &clone
	return nil
}

func (r *stubApprovalRepo) Remove(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
	return nil
}

func (r *stubApprovalRepo) List(_ context.Context) ([]*domain.ApprovalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.ApprovalEntry, 0, len(r.entries))
	for _, e := range r.entries {
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

// ── Identity provider ──

type stubIdentity struct {
	mu          sync.Mutex
	nextSubject string
	createErr   error
	signInErr   error
	signInToken *ports.IdentityToken
	deleted     []string
	revoked     []string
	passwords   map[string]string
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{nextSubject: "subj-1", passwords: make(map[string]string)}
}

func (s *stubIdentity) CreateIdentity(_ context.Context, _, _ string) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	return s.nextSubject, nil
}

func (s *stubIdentity) DeleteIdentity(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, subjectID)
	return nil
}

func (s *stubIdentity) SignIn(_ context.Context, _, _ string) (*ports.IdentityToken, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return s.signInToken, nil
}

func (s *stubIdentity) UpdatePassword(_ context.Context, subjectID, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords[subjectID] = newPassword
	return nil
}

func (s *stubIdentity) RevokeSessions(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = append(s.revoked, subjectID)
	return nil
}

// ── Token verifier ──

type stubVerifier struct {
	claims *ports.IdentityClaims
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*ports.IdentityClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

// ── Registries ──

type stubLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func newStubLocks() *stubLocks {
	return &stubLocks{held: make(map[string]bool)}
}

func (l *stubLocks) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *stubLocks) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type stubCooldowns struct {
	mu       sync.Mutex
	reserved map[string]bool
}

func newStubCooldowns() *stubCooldowns {
	return &stubCooldowns{reserved: make(map[string]bool)}
}

func (c *stubCooldowns) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reserved[key] {
		return false, nil
	}
	c.reserved[key] = true
	return true, nil
}

// ── Audit recorder ──

type stubAudit struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (a *stubAudit) Record(entry *domain.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *stubAudit) kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Kind
	}
	return out
}

// ── Mailer ──

type stubMailer struct {
	mu       sync.Mutex
	sent     []string // raw codes, in order
	purposes []domain.TokenPurpose
	sendErr  error
}

func (m *stubMailer) SendVerification(_ context.Context, _, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, code)
	m.purposes = append(m.purposes, domain.PurposeEmailVerification)
	return nil
}

func (m *stubMailer) SendPasswordReset(_ context.Context, _, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, code)
	m.purposes = append(m.purposes, domain.PurposePasswordReset)
	return nil
}

func (m *stubMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

// ── DNS resolver ──

type stubResolver struct {
	mx      []*net.MX
	mxErr   error
	hosts   []string
	hostErr error
}

func (r *stubResolver) LookupMX(_ context.Context, _ string) ([]*net.MX, error) {
	return r.mx, r.mxErr
}

func (r *stubResolver) LookupHost(_ context.Context, _ string) ([]string, error) {
	return r.hosts, r.hostErr
}

func resolverWithMX() *stubResolver {
	return &stubResolver{mx: []*net.MX{{Host: "mx.example.net", Pref: 10}}}
}

func notFoundResolver() *stubResolver {
	err := &net.DNSError{Err: "no such host", IsNotFound: true}
	return &stubResolver{mxErr: err, hostErr: err}
}

func flakyResolver() *stubResolver {
	err := &net.DNSError{Err: "i/o timeout", IsTimeout: true, IsTemporary: true}
	return &stubResolver{mxErr: err, hostErr: err}
}

var errBoom = errors.New("boom")
