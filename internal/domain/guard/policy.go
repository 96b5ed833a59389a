// Package guard decides whether a guarded page renders or redirects.
// It is pure: callers supply the probe status and the viewer, and act on the Decision.
package guard

import (
	"fmt"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// Navigation targets used by the guards and the expiry interceptor.
const (
	PathLogin       = "/login"
	PathAdminHome   = "/admin/"
	PathAdminLogin  = "/admin/login"
	PathLandingPage = "/landing-page"
)

// Audience names who a guarded subtree is for.
type Audience string

const (
	AudiencePrivate        Audience = "private"
	AudiencePublic         Audience = "public"
	AudienceProtectedAdmin Audience = "protected-admin"
	AudienceProtectedUser  Audience = "protected-user"
)

// Policy is the per-audience predicate and failure destination.
// Destination is only consulted when Allow returns false.
type Policy struct {
	Audience    Audience
	Allow       func(v domainauth.Viewer) bool
	Destination func(v domainauth.Viewer) string
}

//nolint:gochecknoglobals // static read-only policy table
var policies = map[Audience]Policy{
	AudiencePrivate: {
		Audience: AudiencePrivate,
		Allow: func(v domainauth.Viewer) bool {
			return v.Authenticated && v.HasUser()
		},
		Destination: func(v domainauth.Viewer) string {
			if !v.Authenticated {
				return PathLogin
			}
			return PathAdminHome
		},
	},
	AudiencePublic: {
		Audience: AudiencePublic,
		Allow: func(v domainauth.Viewer) bool {
			return !v.Authenticated
		},
		Destination: func(domainauth.Viewer) string {
			return PathLandingPage
		},
	},
	AudienceProtectedAdmin: {
		Audience: AudienceProtectedAdmin,
		Allow: func(v domainauth.Viewer) bool {
			return v.Authenticated && v.Admin
		},
		Destination: func(v domainauth.Viewer) string {
			if !v.Authenticated {
				return PathLogin
			}
			return PathLandingPage
		},
	},
	AudienceProtectedUser: {
		Audience: AudienceProtectedUser,
		Allow: func(v domainauth.Viewer) bool {
			return v.Authenticated && v.HasUser() && !v.IsPublicUser()
		},
		Destination: func(v domainauth.Viewer) string {
			switch {
			case !v.Authenticated:
				return PathLogin
			case !v.HasUser():
				return PathAdminHome
			default:
				return PathLandingPage
			}
		},
	},
}

// PolicyFor returns the policy for an audience.
func PolicyFor(a Audience) (Policy, error) {
	p, ok := policies[a]
	if !ok {
		return Policy{}, fmt.Errorf("unknown guard audience %q", a)
	}
	return p, nil
}

// MustPolicy is PolicyFor for route wiring; it panics on an unknown audience.
func MustPolicy(a Audience) Policy {
	p, err := PolicyFor(a)
	if err != nil {
		panic(err) //nolint:forbidigo // Fail fast during server setup.
	}
	return p
}

// Outcome is what a guard does with its subtree.
type Outcome int

const (
	OutcomeWait Outcome = iota
	OutcomeRender
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWait:
		return "wait"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a policy. Target is set only for OutcomeRedirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Decide evaluates p for the given probe status and viewer.
// While the probe is loading the subtree never renders and no redirect is issued.
func Decide(p Policy, status domainauth.Status, v domainauth.Viewer) Decision {
	if status.Loading {
		return Decision{Outcome: OutcomeWait}
	}
	// The probe owns the authenticated bit; the viewer only contributes the role flags.
	v.Authenticated = status.Authenticated
	if p.Allow(v) {
		return Decision{Outcome: OutcomeRender}
	}
	return Decision{Outcome: OutcomeRedirect, Target: p.Destination(v)}
}
