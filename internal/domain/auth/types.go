package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"slices"
	"time"
)

// Role is the single enumerated role of a session.
// A session is anonymous, a regular user, or an admin; never two at once.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// Key names one of the flags held by a session.
type Key string

const (
	KeyToken Key = "token"
	KeyUser  Key = "user"
	KeyAdmin Key = "admin"
)

// AllKeys lists every session flag.
func AllKeys() []Key { return []Key{KeyToken, KeyUser, KeyAdmin} }

// UserProfile is the regular-user profile returned by the story API at login.
// Public marks a restricted-capability profile.
type UserProfile struct {
	ID     string `json:"id,omitempty"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Public bool   `json:"public"`
}

// AdminProfile is the admin marker. Only its presence matters for authorization.
type AdminProfile struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	Groups    []string
	IDToken   string
	ExpiresAt time.Time
}

// Session is the server-side record persisted for a browser.
// ID is an opaque session identifier carried in the session cookie.
type Session struct {
	ID        string        `json:"id"`
	Token     string        `json:"token,omitempty"`
	Role      Role          `json:"role"`
	User      *UserProfile  `json:"user,omitempty"`
	Admin     *AdminProfile `json:"admin,omitempty"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// Authenticated reports whether a non-empty token is present.
func (s Session) Authenticated() bool { return s.Token != "" }

// HasUser reports whether the session carries a regular-user profile.
func (s Session) HasUser() bool { return s.Role == RoleUser && s.User != nil }

// HasAdmin reports whether the session carries the admin marker.
func (s Session) HasAdmin() bool { return s.Role == RoleAdmin && s.Admin != nil }

// IsEmpty reports whether no flag is set; an empty session need not be stored.
func (s Session) IsEmpty() bool { return !s.Authenticated() && !s.HasUser() && !s.HasAdmin() }

// Without returns a copy of the session with the given flags cleared.
// Clearing the flag that backs the current role drops the session to anonymous.
func (s Session) Without(keys ...Key) Session {
	out := s
	if slices.Contains(keys, KeyToken) {
		out.Token = ""
	}
	if slices.Contains(keys, KeyUser) && out.Role == RoleUser {
		out.Role = RoleAnonymous
		out.User = nil
	}
	if slices.Contains(keys, KeyAdmin) && out.Role == RoleAdmin {
		out.Role = RoleAnonymous
		out.Admin = nil
	}
	if out.Role == "" {
		out.Role = RoleAnonymous
	}
	return out
}

// Viewer returns the derived, read-only view guards evaluate.
func (s Session) Viewer() Viewer {
	v := Viewer{Authenticated: s.Authenticated(), Admin: s.HasAdmin()}
	if s.HasUser() {
		u := *s.User
		v.User = &u
	}
	return v
}

// Viewer is what a guard knows about the current browser.
type Viewer struct {
	Authenticated bool
	User          *UserProfile
	Admin         bool
}

// HasUser reports whether a regular-user profile is present.
func (v Viewer) HasUser() bool { return v.User != nil }

// IsPublicUser reports whether the user profile is marked public.
func (v Viewer) IsPublicUser() bool { return v.User != nil && v.User.Public }

// Status is the auth probe result.
type Status struct {
	Authenticated bool
	Loading       bool
}
