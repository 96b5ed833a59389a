package service

import (
	"context"
	"sync"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// Probe derives the auth status for one guarded request. It reports loading until
// Resolve reads the token, and never reads again after that; a token written or
// removed elsewhere mid-request is not observed.
type Probe struct {
	readToken func(context.Context) string

	mu            sync.Mutex
	resolved      bool
	authenticated bool
}

// NewProbe creates an unresolved probe for the given session id.
func (s *SessionService) NewProbe(sessionID string) *Probe {
	return &Probe{readToken: func(ctx context.Context) string { return s.Token(ctx, sessionID) }}
}

// NewSessionProbe creates an unresolved probe over a session already loaded for
// this request, so the probe and the guard's viewer see the same record.
func NewSessionProbe(sess domainauth.Session) *Probe {
	return &Probe{readToken: func(context.Context) string { return sess.Token }}
}

// Status returns the current probe result without reading the session.
func (p *Probe) Status() domainauth.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.resolved {
		return domainauth.Status{Loading: true}
	}
	return domainauth.Status{Authenticated: p.authenticated}
}

// Resolve performs the single token read. If ctx is already done the read is
// skipped and the probe stays loading.
func (p *Probe) Resolve(ctx context.Context) domainauth.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.resolved {
		if ctx.Err() != nil {
			return domainauth.Status{Loading: true}
		}
		p.authenticated = p.readToken(ctx) != ""
		p.resolved = true
	}
	return domainauth.Status{Authenticated: p.authenticated}
}
