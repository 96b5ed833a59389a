package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/service"
)

// SessionAccessor is what the browser handlers need from the session service.
type SessionAccessor interface {
	SessionReader
	SessionClearer
	NewProbe(sessionID string) *service.Probe
}

// ExpiryHandler turns session-expiry API errors into a signed-out browser.
type ExpiryHandler interface {
	HandleError(ctx context.Context, err error, client ports.BrowserScope, isAdminContext bool) bool
}

// AccountReader serves the plan, cart and admin listings.
type AccountReader interface {
	Plans(ctx context.Context) ([]ports.Plan, error)
	Cart(ctx context.Context, token string) (ports.Cart, error)
	SelectPlan(ctx context.Context, token, planID string) (ports.Cart, error)
	AdminUsers(ctx context.Context, token string) ([]ports.UserSummary, error)
	Dashboard(ctx context.Context, token string) (service.Dashboard, error)
}

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T        *TemplateRenderer
	Sessions SessionAccessor
	Expiry   ExpiryHandler
	Auth     AuthFlows
	Accounts AccountReader
	Cookies  CookieConfig
	IsDev    bool
	Logger   *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	CurrentPage string
}

// PageData is what every page template receives.
type PageData struct {
	Title        string
	CurrentPage  string
	CSRFToken    string
	Viewer       domainauth.Viewer
	OAuthEnabled bool
	Toasts       []ports.Toast
	Error        string
	FieldErrors  map[string]string
	Form         map[string]string
	Data         any
}

// IsAdminContext reports whether the page belongs to the admin area.
func (d PageData) IsAdminContext() bool {
	switch d.CurrentPage {
	case PageAdminHome, PageAdminUsers, PageAdminLogin:
		return true
	default:
		return false
	}
}

// basePageData builds the data shared by every page and picks up toasts carried
// over from a redirect.
func (h *UIHandlers) basePageData(w http.ResponseWriter, r *http.Request, meta PageMeta) PageData {
	return PageData{
		Title:        meta.Title,
		CurrentPage:  meta.CurrentPage,
		CSRFToken:    GetCSRFToken(r),
		Viewer:       ViewerFromContext(r.Context()),
		OAuthEnabled: h.Auth != nil && h.Auth.OAuthEnabled(),
		Toasts:       takeToasts(w, r, h.Cookies),
	}
}

// render writes the page: the content section for htmx swaps, the full layout otherwise.
func (h *UIHandlers) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, status, data); err != nil {
			h.renderTemplateError(w, r, err)
		}
		return
	}

	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})
	triggerToasts(w, data.Toasts)
	if err := h.T.RenderPartial(w, status, data); err != nil {
		h.renderTemplateError(w, r, err)
	}
}

// Page renders a page that needs no data beyond the layout.
func (h *UIHandlers) Page(meta PageMeta) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, h.basePageData(w, r, meta))
	}
}

// sessionToken returns the bearer token of the request's session.
func sessionToken(r *http.Request) string {
	s, _ := SessionFromContext(r.Context())
	return s.Token
}

func isAdminPath(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}

// handleError passes err through the expiry interceptor first. It returns true
// when the interceptor took over and the response is written; otherwise the
// error is attached to data as a generic error toast for the caller to render.
func (h *UIHandlers) handleError(w http.ResponseWriter, r *http.Request, data *PageData, err error) bool {
	if h.Expiry != nil {
		scope := NewBrowserScope(w, r, h.Sessions, h.Cookies)
		if h.Expiry.HandleError(r.Context(), err, scope, isAdminPath(r.URL.Path)) && scope.Commit() {
			return true
		}
	}

	msg := publicMessage(err, "Something went wrong. Please try again.")
	if statusForError(err) >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	} else {
		h.logger().InfoContext(r.Context(), "request rejected", "error", err, "path", r.URL.Path)
	}
	data.Error = msg
	if field := apperrors.GetField(err); field != "" {
		if data.FieldErrors == nil {
			data.FieldErrors = map[string]string{}
		}
		data.FieldErrors[field] = msg
	}
	data.Toasts = mergeToast(data.Toasts, ports.Toast{Message: msg, Level: ports.ToastError})
	return false
}

// Loading is served while a guard cannot resolve the session yet.
func (h *UIHandlers) Loading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	h.render(w, r, http.StatusServiceUnavailable, h.loadingPageData(r))
}

// loadingPageData is basePageData without taking carried-over toasts; the
// page the browser retries into shows them instead.
func (h *UIHandlers) loadingPageData(r *http.Request) PageData {
	return PageData{
		Title:        "Loading",
		CurrentPage:  PageLoading,
		CSRFToken:    GetCSRFToken(r),
		Viewer:       ViewerFromContext(r.Context()),
		OAuthEnabled: h.Auth != nil && h.Auth.OAuthEnabled(),
	}
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Page not found", CurrentPage: PageNotFound})
	h.render(w, r, http.StatusNotFound, data)
}

// renderTemplateError shows template failures inline in dev and a bare 500 otherwise.
func (h *UIHandlers) renderTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().Error("template rendering failed",
		"error", err,
		"path", r.URL.Path,
		"method", r.Method,
	)
	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<pre class="template-error">` + html.EscapeString(err.Error()) + `</pre>`))
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
