package config

import (
	"fmt"
	"strings"
)

// AuthMode selects the IdP behind "Continue with Google".
type AuthMode string

const (
	// AuthModeOAuth uses an OIDC provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock signs in a fixed dev identity (development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OIDC client configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/oauth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL" envDefault:"https://accounts.google.com"`
}

// DevAuthConfig is the identity signed in when AUTH_MODE=mock.
type DevAuthConfig struct {
	Subject string   `env:"SUBJECT" envDefault:"dev-user"`
	Email   string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Name    string   `env:"NAME"    envDefault:"Dev User"`
	Groups  []string `env:"GROUPS"                            envSeparator:";"`
}

// AuthConfig groups sign-in configuration. Email/password sign-in is always on;
// OAuth is opt-in.
type AuthConfig struct {
	OAuthEnabled bool     `env:"AUTH_OAUTH_ENABLED" envDefault:"false"`
	Mode         AuthMode `env:"AUTH_MODE"          envDefault:"oauth"`

	OAuth   OAuthConfig   `envPrefix:"OAUTH_"`
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup promotes OAuth identities in this group to admin.
	AdminGroup string `env:"ADMIN_GROUP"`
	// AdminEmails promotes OAuth identities with these emails to admin.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModeOAuth
	}
	emails := a.AdminEmails[:0]
	for _, e := range a.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	a.AdminEmails = emails
	a.AdminGroup = strings.TrimSpace(a.AdminGroup)
}
