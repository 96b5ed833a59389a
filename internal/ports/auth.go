package ports

// Package ports defines interfaces (hexagonal ports) for auth and session behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// ErrSessionNotFound is returned by session stores when no live record exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves session records.
// Get returns an error wrapping ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionLister is implemented by stores that can enumerate live session ids.
type SessionLister interface {
	List(ctx context.Context, limit int) ([]string, error)
}

// SessionPinger is implemented by stores backed by a network service.
type SessionPinger interface {
	Ping(ctx context.Context) error
}

// RoleMapper decides which role an IdP identity signs in as.
type RoleMapper interface {
	Map(id domainauth.Identity) domainauth.Role
}

// SessionPurger is implemented by stores that need expired records removed
// periodically. Stores with native expiry do not implement it.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
