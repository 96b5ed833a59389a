package httpx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
)

// SessionClearer removes flags from a stored session.
type SessionClearer interface {
	Clear(ctx context.Context, id string, keys ...domainauth.Key) error
}

// BrowserScope collects the side effects requested while handling one browser
// request and applies them when the handler commits.
type BrowserScope struct {
	w        http.ResponseWriter
	r        *http.Request
	sessions SessionClearer
	cookies  CookieConfig

	target string
	toasts []ports.Toast
}

var _ ports.BrowserScope = (*BrowserScope)(nil)

// NewBrowserScope binds a scope to the request.
func NewBrowserScope(w http.ResponseWriter, r *http.Request, sessions SessionClearer, cookies CookieConfig) *BrowserScope {
	return &BrowserScope{w: w, r: r, sessions: sessions, cookies: cookies}
}

// Redirect records the navigation target. The last call wins.
func (b *BrowserScope) Redirect(path string) { b.target = path }

// Toast queues a notification; a toast with an ID replaces a queued one with the same ID.
func (b *BrowserScope) Toast(t ports.Toast) { b.toasts = mergeToast(b.toasts, t) }

// ClearSession removes keys from this browser's stored session.
func (b *BrowserScope) ClearSession(ctx context.Context, keys ...domainauth.Key) error {
	return b.sessions.Clear(ctx, b.cookies.SessionID(b.r), keys...)
}

// Redirected reports whether a redirect was requested.
func (b *BrowserScope) Redirected() bool { return b.target != "" }

// Toasts returns the queued toasts.
func (b *BrowserScope) Toasts() []ports.Toast { return b.toasts }

// Commit writes the queued effects. With a redirect the toasts ride along in a
// cookie to the next page and the redirect is sent; Commit then returns true and
// the handler must not write. Without one, htmx requests get the toasts as
// showToast triggers and plain requests leave them for the page render.
func (b *BrowserScope) Commit() bool {
	if b.target != "" {
		if len(b.toasts) > 0 {
			pending := readToastCookie(b.r)
			for _, t := range b.toasts {
				pending = mergeToast(pending, t)
			}
			writeToastCookie(b.w, b.r, b.cookies, pending)
		}
		redirect(b.w, b.r, b.target)
		return true
	}
	if IsHTMX(b.r) {
		triggerToasts(b.w, b.toasts)
		b.toasts = nil
	}
	return false
}

// triggerToasts adds toasts to the showToast trigger as one array, keeping any
// toasts an earlier call already put there.
func triggerToasts(w http.ResponseWriter, toasts []ports.Toast) {
	if len(toasts) == 0 {
		return
	}
	merged := triggeredToasts(w.Header().Get("Hx-Trigger"))
	for _, t := range toasts {
		merged = mergeToast(merged, t)
	}
	SetHXTrigger(w, "showToast", merged)
}

func triggeredToasts(header string) []ports.Toast {
	if header == "" {
		return nil
	}
	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(header), &events); err != nil {
		return nil
	}
	raw, ok := events["showToast"]
	if !ok {
		return nil
	}
	var list []ports.Toast
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var one ports.Toast
	if err := json.Unmarshal(raw, &one); err == nil && one.Message != "" {
		return []ports.Toast{one}
	}
	return nil
}

func mergeToast(list []ports.Toast, t ports.Toast) []ports.Toast {
	if t.ID != "" {
		for i := range list {
			if list[i].ID == t.ID {
				list[i] = t
				return list
			}
		}
	}
	return append(list, t)
}

func readToastCookie(r *http.Request) []ports.Toast {
	c, err := r.Cookie(toastCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var toasts []ports.Toast
	if err := json.Unmarshal(raw, &toasts); err != nil {
		return nil
	}
	return toasts
}

func writeToastCookie(w http.ResponseWriter, r *http.Request, cookies CookieConfig, toasts []ports.Toast) {
	b, err := json.Marshal(toasts)
	if err != nil {
		return
	}
	cookies.setShortLived(w, r, toastCookie, base64.RawURLEncoding.EncodeToString(b))
}

// takeToasts returns the toasts carried over from a redirect and expires the cookie.
func takeToasts(w http.ResponseWriter, r *http.Request, cookies CookieConfig) []ports.Toast {
	toasts := readToastCookie(r)
	if _, err := r.Cookie(toastCookie); err == nil {
		cookies.clear(w, r, toastCookie)
	}
	return toasts
}
