package testutil

import (
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// SessionBuilder builds session records for store and service tests.
type SessionBuilder struct {
	sess domainauth.Session
}

// NewSession starts an anonymous session with id that expires an hour after TestTime.
func NewSession(id string) *SessionBuilder {
	return &SessionBuilder{sess: domainauth.Session{
		ID:        id,
		Role:      domainauth.RoleAnonymous,
		ExpiresAt: TestTime().Add(time.Hour),
	}}
}

// WithToken sets the bearer token.
func (b *SessionBuilder) WithToken(token string) *SessionBuilder {
	b.sess.Token = token
	return b
}

// AsUser makes the session a regular-user session.
func (b *SessionBuilder) AsUser(email string, public bool) *SessionBuilder {
	b.sess.Role = domainauth.RoleUser
	b.sess.Admin = nil
	b.sess.User = &domainauth.UserProfile{Email: email, Public: public}
	return b
}

// AsAdmin makes the session an admin session.
func (b *SessionBuilder) AsAdmin(email string) *SessionBuilder {
	b.sess.Role = domainauth.RoleAdmin
	b.sess.User = nil
	b.sess.Admin = &domainauth.AdminProfile{Email: email}
	return b
}

// ExpiresAt overrides the expiry.
func (b *SessionBuilder) ExpiresAt(at time.Time) *SessionBuilder {
	b.sess.ExpiresAt = at
	return b
}

// Build returns the session.
func (b *SessionBuilder) Build() domainauth.Session {
	return b.sess
}

// UserSession is a signed-in regular user with a public profile.
func UserSession(id string) domainauth.Session {
	return NewSession(id).WithToken("user-token").AsUser("reader@example.com", true).Build()
}

// AdminSession is a signed-in admin.
func AdminSession(id string) domainauth.Session {
	return NewSession(id).WithToken("admin-token").AsAdmin("editor@example.com").Build()
}
