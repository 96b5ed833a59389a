package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider  = (*MockAuthProvider)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.SessionLister = (*MemorySessionStore)(nil)
	_ ports.RoleMapper    = (*StaticRoleMapper)(nil)
	_ ports.BrowserScope  = (*RecordingBrowser)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: defaultIdentity(),
	}
}

func defaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		Subject: "mock-user-1",
		Name:    "Mock User",
		Email:   "mock.user@example.com",
		Groups:  []string{"users"},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	return authURL, fmt.Sprintf("%s-%d", statePrefix, m.callCount), fmt.Sprintf("%s-%d", noncePrefix, m.callCount), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.Subject == "" {
		user = defaultIdentity()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
// It counts writes so tests can assert that a call had no storage effect.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	Saves   int
	Deletes int

	// GetErr, when set, is returned from every Get.
	GetErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	m.Saves++
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domainauth.Session{}, m.GetErr
	}
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.Deletes++
	}
	return nil
}

// List returns stored ids in lexical order.
func (m *MemorySessionStore) List(_ context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Put stores sess without counting it as a write.
func (m *MemorySessionStore) Put(sess domainauth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
}

// Peek returns the stored record without side effects.
func (m *MemorySessionStore) Peek(id string) (domainauth.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// StaticRoleMapper maps identities by simple group and email membership rules.
type StaticRoleMapper struct {
	AdminGroup  string
	AdminEmails []string
}

func (m StaticRoleMapper) Map(id domainauth.Identity) domainauth.Role {
	if m.AdminGroup != "" && slices.Contains(id.Groups, m.AdminGroup) {
		return domainauth.RoleAdmin
	}
	if id.Email != "" && slices.Contains(m.AdminEmails, id.Email) {
		return domainauth.RoleAdmin
	}
	return domainauth.RoleUser
}

// RecordingBrowser records every side effect requested through ports.BrowserScope.
// ClearSession forwards to Clear when set.
type RecordingBrowser struct {
	Redirects []string
	Toasts    []ports.Toast
	Cleared   [][]domainauth.Key

	Clear func(ctx context.Context, keys ...domainauth.Key) error
}

func (b *RecordingBrowser) Redirect(path string) { b.Redirects = append(b.Redirects, path) }

func (b *RecordingBrowser) Toast(t ports.Toast) { b.Toasts = append(b.Toasts, t) }

func (b *RecordingBrowser) ClearSession(ctx context.Context, keys ...domainauth.Key) error {
	b.Cleared = append(b.Cleared, slices.Clone(keys))
	if b.Clear != nil {
		return b.Clear(ctx, keys...)
	}
	return nil
}

// VisibleToasts returns the toasts a page would show: later toasts replace
// earlier ones with the same non-empty ID.
func (b *RecordingBrowser) VisibleToasts() []ports.Toast {
	out := make([]ports.Toast, 0, len(b.Toasts))
	for _, t := range b.Toasts {
		idx := -1
		if t.ID != "" {
			idx = slices.IndexFunc(out, func(o ports.Toast) bool { return o.ID == t.ID })
		}
		if idx >= 0 {
			out[idx] = t
			continue
		}
		out = append(out, t)
	}
	return out
}
