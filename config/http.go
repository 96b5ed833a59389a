package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the externally visible URL, used to build OAuth redirect URLs.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for the session cookie. Empty uses the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// SecureCookies marks the session and CSRF cookies Secure. Forced off in dev.
	SecureCookies bool `env:"APP_SECURE_COOKIES" envDefault:"true"`

	// CompressionEnabled enables gzip for HTML, CSS, JS and JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip level (1-9).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"15s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.CompressionLevel = min(max(h.CompressionLevel, 1), 9)
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	h.CookieDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h.CookieDomain)), ".")
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 10 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
}

// Validate rejects a cookie domain browsers would refuse or that would share the
// session cookie with unrelated sites: an IP address, or a public suffix such as
// "com" or "github.io". Single-label hosts like localhost are allowed.
func (h *HTTPConfig) Validate() error {
	d := h.CookieDomain
	if d == "" {
		return nil
	}
	if net.ParseIP(d) != nil {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q must be a host name, not an IP address", d)
	}
	// Unlisted single labels fall under the list's default rule and are their
	// own suffix without being ICANN-managed.
	if suffix, icann := publicsuffix.PublicSuffix(d); suffix == d && (icann || strings.Contains(d, ".")) {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q is a public suffix", d)
	}
	return nil
}
