package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// Cookie names besides the configurable session cookie.
const (
	DefaultSessionCookieName = "session_id"
	oauthStateCookie         = "oauth_state"
	oauthNonceCookie         = "oauth_nonce"
	postLoginRedirectCookie  = "post_login_redirect"
	toastCookie              = "storyweb_toasts"
)

// CookieConfig controls how cookies are written.
type CookieConfig struct {
	SessionName string
	Domain      string
	// Secure forces the Secure attribute. Requests over TLS (directly or via a
	// proxy) get it regardless.
	Secure bool
}

func (c CookieConfig) sessionName() string {
	if c.SessionName == "" {
		return DefaultSessionCookieName
	}
	return c.SessionName
}

// SessionID returns the session id carried by the request, or "".
func (c CookieConfig) SessionID(r *http.Request) string {
	cookie, err := r.Cookie(c.sessionName())
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c CookieConfig) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || isForwardedHTTPS(r)
}

// SetSession writes the session cookie so it lives as long as the record.
func (c CookieConfig) SetSession(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.sessionName(),
		Value:    s.ID,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearSession expires the session cookie.
func (c CookieConfig) ClearSession(w http.ResponseWriter, r *http.Request) {
	c.clear(w, r, c.sessionName())
}

// setShortLived writes an HttpOnly cookie that lasts ten minutes.
func (c CookieConfig) setShortLived(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
}

// clear mirrors the attributes used when setting so browsers drop the cookie.
func (c CookieConfig) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// isForwardedHTTPS checks if the request was forwarded over HTTPS.
// Handles comma-separated values in X-Forwarded-Proto.
func isForwardedHTTPS(r *http.Request) bool {
	for proto := range strings.SplitSeq(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
