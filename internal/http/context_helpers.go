package httpx

import (
	"context"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session loaded for this request and whether
// the session middleware ran.
func SessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domainauth.Session)
	return s, ok
}

// ViewerFromContext returns the viewer for this request; anonymous when no
// session was loaded.
func ViewerFromContext(ctx context.Context) domainauth.Viewer {
	s, _ := SessionFromContext(ctx)
	return s.Viewer()
}
