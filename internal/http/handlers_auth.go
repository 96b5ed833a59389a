package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/domain/guard"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/service"
)

// AuthFlows defines the sign-in and sign-out operations the handlers drive.
type AuthFlows interface {
	Login(ctx context.Context, sessionID string, in ports.Credentials) (domainauth.Session, error)
	AdminLogin(ctx context.Context, sessionID string, in ports.Credentials) (domainauth.Session, error)
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	OAuthEnabled() bool
}

const (
	defaultUserRedirect  = "/dashboard"
	defaultAdminRedirect = guard.PathAdminHome
)

// LoginPage renders the user sign-in form.
// GET /login?redirect_uri=<optional_redirect>.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Sign in", CurrentPage: PageLogin})
	data.Form = map[string]string{"redirect_uri": safeRedirectPath(r.URL.Query().Get("redirect_uri"), "")}
	h.render(w, r, http.StatusOK, data)
}

// Login handles the user sign-in form.
// POST /login.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.submitLogin(w, r, loginForm{
		meta:     PageMeta{Title: "Sign in", CurrentPage: PageLogin},
		fallback: defaultUserRedirect,
		signIn:   h.Auth.Login,
	})
}

// AdminLoginPage renders the admin sign-in form.
// GET /admin/login.
func (h *UIHandlers) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(w, r, PageMeta{Title: "Admin sign in", CurrentPage: PageAdminLogin})
	data.Form = map[string]string{"redirect_uri": safeRedirectPath(r.URL.Query().Get("redirect_uri"), "")}
	h.render(w, r, http.StatusOK, data)
}

// AdminLogin handles the admin sign-in form.
// POST /admin/login.
func (h *UIHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.submitLogin(w, r, loginForm{
		meta:     PageMeta{Title: "Admin sign in", CurrentPage: PageAdminLogin},
		fallback: defaultAdminRedirect,
		signIn:   h.Auth.AdminLogin,
	})
}

type loginForm struct {
	meta     PageMeta
	fallback string
	signIn   func(ctx context.Context, sessionID string, in ports.Credentials) (domainauth.Session, error)
}

// submitLogin signs in under a fresh session id so a pre-login id is never
// promoted, then drops whatever the previous id held.
func (h *UIHandlers) submitLogin(w http.ResponseWriter, r *http.Request, f loginForm) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	creds := ports.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	target := safeRedirectPath(r.PostFormValue("redirect_uri"), f.fallback)

	oldID := h.Cookies.SessionID(r)
	sess, err := f.signIn(r.Context(), service.NewSessionID(), creds)
	if err != nil {
		data := h.basePageData(w, r, f.meta)
		data.Form = map[string]string{"email": creds.Email, "redirect_uri": r.PostFormValue("redirect_uri")}
		if h.handleError(w, r, &data, loginError(err)) {
			return
		}
		h.render(w, r, loginStatus(err), data)
		return
	}

	if oldID != "" && oldID != sess.ID {
		if lerr := h.Auth.Logout(r.Context(), oldID); lerr != nil {
			h.logger().WarnContext(r.Context(), "drop previous session failed", "error", lerr)
		}
	}
	h.Cookies.SetSession(w, r, sess)
	h.logger().InfoContext(r.Context(), "signed in", "role", string(sess.Role))

	scope := NewBrowserScope(w, r, h.Sessions, h.Cookies)
	scope.Redirect(target)
	scope.Commit()
}

// loginError hides the story API's wording for bad credentials.
func loginError(err error) error {
	var apiErr *ports.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return &ports.APIError{Status: apiErr.Status, Message: "Invalid email or password."}
	}
	return err
}

func loginStatus(err error) int {
	status := statusForError(err)
	if status == http.StatusBadRequest {
		return http.StatusUnprocessableEntity
	}
	return status
}

// OAuthStart begins the identity provider flow.
// GET /auth/oauth/start?redirect_uri=<optional_redirect>.
func (h *UIHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil || !h.Auth.OAuthEnabled() {
		h.NotFound(w, r)
		return
	}
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"), defaultUserRedirect)

	result, err := h.Auth.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin oauth login failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	h.Cookies.setShortLived(w, r, oauthStateCookie, result.State)
	h.Cookies.setShortLived(w, r, oauthNonceCookie, result.Nonce)
	h.Cookies.setShortLived(w, r, postLoginRedirectCookie, redirectURI)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// OAuthCallback completes the identity provider flow.
// GET /auth/oauth/callback?code=<code>&state=<state>.
func (h *UIHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil || !h.Auth.OAuthEnabled() {
		h.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	code, state := q.Get("code"), q.Get("state")
	switch {
	case code == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_code", Err: errors.New("authorization code is required")})
		return
	case state == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_state", Err: errors.New("state parameter is required")})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state", Err: errors.New("invalid or missing state parameter")})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil || nonceCookie.Value == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_nonce", Err: errors.New("missing nonce parameter")})
		return
	}

	oldID := h.Cookies.SessionID(r)
	sess, err := h.Auth.CompleteLogin(r.Context(), service.CompleteLoginInput{
		SessionID: service.NewSessionID(),
		Code:      code,
		State:     state,
		Nonce:     nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "oauth login failed", "error", err)
		scope := NewBrowserScope(w, r, h.Sessions, h.Cookies)
		scope.Toast(ports.Toast{Message: "Sign-in failed. Please try again.", Level: ports.ToastError})
		scope.Redirect(guard.PathLogin)
		scope.Commit()
		return
	}
	if oldID != "" && oldID != sess.ID {
		if lerr := h.Auth.Logout(r.Context(), oldID); lerr != nil {
			h.logger().WarnContext(r.Context(), "drop previous session failed", "error", lerr)
		}
	}

	h.Cookies.SetSession(w, r, sess)
	h.Cookies.clear(w, r, oauthStateCookie)
	h.Cookies.clear(w, r, oauthNonceCookie)

	fallback := defaultUserRedirect
	if sess.HasAdmin() {
		fallback = defaultAdminRedirect
	}
	target := fallback
	if c, cerr := r.Cookie(postLoginRedirectCookie); cerr == nil {
		target = safeRedirectPath(c.Value, fallback)
		h.Cookies.clear(w, r, postLoginRedirectCookie)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Logout signs the browser out and returns it to the sign-in page.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := h.Cookies.SessionID(r); id != "" {
		if err := h.Auth.Logout(r.Context(), id); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.Cookies.ClearSession(w, r)

	scope := NewBrowserScope(w, r, h.Sessions, h.Cookies)
	scope.Toast(ports.Toast{Message: "You have been signed out.", Level: ports.ToastInfo})
	scope.Redirect(guard.PathLogin)
	scope.Commit()
}

// StatusResponse is the JSON body of GET /auth/status.
type StatusResponse struct {
	Authenticated bool                     `json:"authenticated"`
	Loading       bool                     `json:"loading"`
	Role          domainauth.Role          `json:"role"`
	User          *domainauth.UserProfile  `json:"user,omitempty"`
	Admin         *domainauth.AdminProfile `json:"admin,omitempty"`
	ExpiresAt     *time.Time               `json:"expires_at,omitempty"`
}

// Status reports the auth probe result for the calling browser.
// GET /auth/status.
func (h *UIHandlers) Status(w http.ResponseWriter, r *http.Request) {
	status := h.Sessions.NewProbe(h.Cookies.SessionID(r)).Resolve(r.Context())
	resp := StatusResponse{
		Authenticated: status.Authenticated,
		Loading:       status.Loading,
		Role:          domainauth.RoleAnonymous,
	}
	if sess, ok := SessionFromContext(r.Context()); ok && status.Authenticated {
		if sess.Role != "" {
			resp.Role = sess.Role
		}
		resp.User = sess.User
		resp.Admin = sess.Admin
		if !sess.ExpiresAt.IsZero() {
			exp := sess.ExpiresAt
			resp.ExpiresAt = &exp
		}
	}
	code := http.StatusOK
	if status.Loading {
		w.Header().Set("Retry-After", "1")
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, resp)
}

// safeRedirectPath allows only same-origin absolute paths; anything else yields fallback.
func safeRedirectPath(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}
	if strings.Contains(raw, "\\") {
		return fallback
	}
	return u.RequestURI()
}
